// Package hasher implements password hashing with bcrypt.
package hasher

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/taskhub-auth/internal/model"
)

// MinCost is the lowest work factor accepted for stored passwords.
const MinCost = 10

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash in full.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt hashes passwords with a per-password salt.
type Bcrypt struct {
	cost int
}

// NewBcrypt clamps cost into [MinCost, bcrypt.MaxCost].
func NewBcrypt(cost int) *Bcrypt {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Bcrypt{cost: cost}
}

// Cost returns the configured work factor.
func (b *Bcrypt) Cost() int {
	return b.cost
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

func (b *Bcrypt) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
