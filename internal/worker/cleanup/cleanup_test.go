package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskhub-auth/internal/testutil"
)

type countingRecorder struct {
	total int64
	calls int
}

func (c *countingRecorder) RecordCleanup(deleted int64) {
	c.total += deleted
	c.calls++
}

func newMockJob(t *testing.T) (*Job, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	job := NewJob(db, testutil.MakeNoopLogger())
	return job, mock
}

func TestJob_Run(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setup     func(sqlmock.Sqlmock)
		want      int64
		wantErr   bool
		wantCalls int
	}{
		{
			name: "deletes expired records",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM verification_records WHERE expires_at < \$1`).
					WithArgs(now).
					WillReturnResult(sqlmock.NewResult(0, 3))
			},
			want:      3,
			wantCalls: 1,
		},
		{
			name: "nothing to delete",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM verification_records`).
					WithArgs(now).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			want:      0,
			wantCalls: 1,
		},
		{
			name: "exec error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM verification_records`).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
		{
			name: "rows affected error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM verification_records`).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("driver gone")))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, mock := newMockJob(t)
			rec := &countingRecorder{}
			job.WithMetrics(rec)
			job.now = func() time.Time { return now }
			tt.setup(mock)

			got, err := job.Run(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantCalls, rec.calls)
			assert.Equal(t, tt.want, rec.total)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestJob_Start_StopsOnCancel(t *testing.T) {
	job, mock := newMockJob(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 100; i++ {
		mock.ExpectExec(`DELETE FROM verification_records`).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestJob_Start_NonPositiveInterval(t *testing.T) {
	job, mock := newMockJob(t)

	done := make(chan struct{})
	go func() {
		job.Start(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start should return immediately for a zero interval")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
