package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/taskhub-auth/internal/logger"
)

// Logging logs method, path, status and duration of every request.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			args = append(args, "request_id", reqID)
		}

		switch {
		case rec.statusCode >= http.StatusInternalServerError:
			l.logger.Error("HTTP request completed", args...)
		case rec.statusCode >= http.StatusBadRequest:
			l.logger.Warn("HTTP request completed", args...)
		default:
			l.logger.Info("HTTP request completed", args...)
		}
	})
}
