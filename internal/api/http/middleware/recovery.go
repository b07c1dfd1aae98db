package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/dtroode/taskhub-auth/internal/apperr"
	"github.com/dtroode/taskhub-auth/internal/logger"
)

// Recovery turns a handler panic into a 500 response.
func Recovery(logger *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic recovered",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()))
					writeError(w, http.StatusInternalServerError, apperr.CodeInternal, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
