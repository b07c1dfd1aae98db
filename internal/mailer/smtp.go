// Package mailer delivers account emails.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/model"
)

type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

var _ model.Mailer = (*SMTP)(nil)

// SMTP sends HTML email through an SMTP relay.
type SMTP struct {
	client dialer
	from   string
	logger *logger.Logger
}

// SMTPConfig holds relay parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSMTP creates a sender for the given relay.
func NewSMTP(cfg SMTPConfig, logger *logger.Logger) (*SMTP, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTP{client: client, from: cfg.From, logger: logger}, nil
}

func (s *SMTP) Send(ctx context.Context, to, subject, html string) bool {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		s.logger.Error("Mailer: invalid sender address", "from", s.from, "error", err.Error())
		return false
	}
	if err := msg.To(to); err != nil {
		s.logger.Error("Mailer: invalid recipient address", "to", to, "error", err.Error())
		return false
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("Mailer: failed to send email",
			"to", to,
			"subject", subject,
			"error", err.Error())
		return false
	}

	s.logger.Info("Mailer: email sent", "to", to, "subject", subject)
	return true
}
