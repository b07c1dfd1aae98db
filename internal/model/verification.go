package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VerificationStore persists single-use verification records.
type VerificationStore interface {
	Create(ctx context.Context, record VerificationRecord) (VerificationRecord, error)
	FindByUserAndToken(ctx context.Context, userID uuid.UUID, token string) (VerificationRecord, error)
	FindByUser(ctx context.Context, userID uuid.UUID, purpose Purpose) (VerificationRecord, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// VerificationRecord is the server-side half of an emailed token.
// At most one record exists per user and purpose.
type VerificationRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	Purpose   Purpose
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is no longer usable at now.
func (r VerificationRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
