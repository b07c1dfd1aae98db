package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager issues and verifies purpose-tagged tokens.
type TokenManager interface {
	Issue(subject uuid.UUID, purpose Purpose, ttl time.Duration) (IssuedToken, error)
	// Verify returns ErrInvalidToken for every kind of failure.
	Verify(token string) (TokenClaims, error)
}

// IssuedToken is a freshly signed token with its absolute expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenClaims is the verified content of a token.
type TokenClaims struct {
	Subject   uuid.UUID
	Purpose   Purpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}
