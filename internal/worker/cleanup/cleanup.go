// Package cleanup removes verification records whose tokens have expired.
// Read paths already drop expired records they touch; this job sweeps the
// ones nobody comes back for.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dtroode/taskhub-auth/internal/logger"
)

// Executor is satisfied by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Recorder receives the number of records removed per run.
type Recorder interface {
	RecordCleanup(deleted int64)
}

type nopRecorder struct{}

func (nopRecorder) RecordCleanup(int64) {}

type Job struct {
	db      Executor
	logger  *logger.Logger
	metrics Recorder
	now     func() time.Time
}

func NewJob(db Executor, logger *logger.Logger) *Job {
	return &Job{
		db:      db,
		logger:  logger,
		metrics: nopRecorder{},
		now:     time.Now,
	}
}

func (j *Job) WithMetrics(r Recorder) *Job {
	if r != nil {
		j.metrics = r
	}
	return j
}

// Run deletes every record that expired before now. Safe to repeat.
func (j *Job) Run(ctx context.Context) (int64, error) {
	start := j.now()

	query := `DELETE FROM verification_records WHERE expires_at < $1`
	result, err := j.db.ExecContext(ctx, query, start.UTC())
	if err != nil {
		j.logger.Error("Cleanup job: failed to delete expired records",
			"error", err.Error())
		return 0, fmt.Errorf("failed to delete expired verification records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("Cleanup job: failed to read affected rows",
			"error", err.Error())
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}

	j.metrics.RecordCleanup(deleted)
	j.logger.Info("Cleanup job: expired records removed",
		"deleted", deleted,
		"duration_ms", j.now().Sub(start).Milliseconds())

	return deleted, nil
}

// Start runs the job every interval until ctx is done.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		j.logger.Warn("Cleanup job: disabled, non-positive interval",
			"interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Cleanup job: stopped")
			return
		case <-ticker.C:
			// errors are logged in Run, next tick retries
			_, _ = j.Run(ctx)
		}
	}
}
