package context

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/taskhub-auth/internal/model"
)

var _ model.ContextManager = (*Manager)(nil)

type userIDKey struct{}

// Manager stores the authenticated user ID on the request context.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserIDFromContext returns false when no user was set or the ID is nil.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
