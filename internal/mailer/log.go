package mailer

import (
	"context"

	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/model"
)

var _ model.Mailer = (*Log)(nil)

// Log stands in for delivery when no relay is configured. It reports success.
type Log struct {
	logger *logger.Logger
}

func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(_ context.Context, to, subject, html string) bool {
	l.logger.Warn("Mailer: delivery not configured, skipping send",
		"to", to,
		"subject", subject,
		"body", html)
	return true
}
