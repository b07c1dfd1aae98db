package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/taskhub-auth/internal/apperr"
	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/model"
)

// TokenService resolves user ID from bearer tokens.
type TokenService interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects user ID into context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			m.logger.Debug("Authenticate: missing bearer token",
				"path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, apperr.CodeInvalidToken, "Unauthorized")
			return
		}

		userID, err := m.tokenService.GetUserID(r.Context(), token)
		if err != nil || userID == uuid.Nil {
			m.logger.Debug("Authenticate: rejected bearer token",
				"path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, apperr.CodeInvalidToken, "Unauthorized")
			return
		}

		ctx := m.contextManager.SetUserIDToContext(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
