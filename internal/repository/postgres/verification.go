package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/taskhub-auth/internal/model"
)

var _ model.VerificationStore = (*VerificationRepository)(nil)

const verificationColumns = `id, user_id, token, purpose, expires_at, created_at`

type VerificationRepository struct {
	db *Connection
}

func NewVerificationRepository(db *Connection) *VerificationRepository {
	return &VerificationRepository{
		db: db,
	}
}

func (r *VerificationRepository) Create(ctx context.Context, record model.VerificationRecord) (model.VerificationRecord, error) {
	query := `INSERT INTO verification_records (id, user_id, token, purpose, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + verificationColumns

	saved, err := scanRecord(r.db.QueryRow(ctx, query,
		record.ID, record.UserID, record.Token, string(record.Purpose), record.ExpiresAt, record.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.VerificationRecord{}, model.ErrAlreadyExists
		}
		return model.VerificationRecord{}, fmt.Errorf("failed to create verification record: %w", err)
	}

	return saved, nil
}

func (r *VerificationRepository) FindByUserAndToken(ctx context.Context, userID uuid.UUID, token string) (model.VerificationRecord, error) {
	query := `SELECT ` + verificationColumns + `
			  FROM verification_records WHERE user_id = $1 AND token = $2`

	record, err := scanRecord(r.db.QueryRow(ctx, query, userID, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VerificationRecord{}, model.ErrNotFound
		}
		return model.VerificationRecord{}, fmt.Errorf("failed to get verification record by token: %w", err)
	}

	return record, nil
}

func (r *VerificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, purpose model.Purpose) (model.VerificationRecord, error) {
	query := `SELECT ` + verificationColumns + `
			  FROM verification_records WHERE user_id = $1 AND purpose = $2`

	record, err := scanRecord(r.db.QueryRow(ctx, query, userID, string(purpose)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VerificationRecord{}, model.ErrNotFound
		}
		return model.VerificationRecord{}, fmt.Errorf("failed to get verification record by user: %w", err)
	}

	return record, nil
}

func (r *VerificationRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM verification_records WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete verification record: %w", err)
	}

	return nil
}

func scanRecord(row pgx.Row) (model.VerificationRecord, error) {
	var (
		record  model.VerificationRecord
		purpose string
	)

	err := row.Scan(&record.ID, &record.UserID, &record.Token, &purpose, &record.ExpiresAt, &record.CreatedAt)
	if err != nil {
		return model.VerificationRecord{}, err
	}
	record.Purpose = model.Purpose(purpose)

	return record, nil
}
