package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/model"
)

var _ model.Mailer = (*Archiving)(nil)

// ArchivedMessage is the stored copy of an outgoing email.
type ArchivedMessage struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	Delivered bool      `json:"delivered"`
	SentAt    time.Time `json:"sentAt"`
}

// Archiving stores a copy of every message after handing it to next.
// Archive failures are logged and never change the delivery result.
type Archiving struct {
	next    model.Mailer
	storage model.Storage
	logger  *logger.Logger
	now     func() time.Time
}

func NewArchiving(next model.Mailer, storage model.Storage, logger *logger.Logger) *Archiving {
	return &Archiving{next: next, storage: storage, logger: logger, now: time.Now}
}

func (a *Archiving) Send(ctx context.Context, to, subject, html string) bool {
	delivered := a.next.Send(ctx, to, subject, html)

	msg := ArchivedMessage{
		To:        to,
		Subject:   subject,
		HTML:      html,
		Delivered: delivered,
		SentAt:    a.now().UTC(),
	}
	if err := a.store(ctx, msg); err != nil {
		a.logger.Error("Mailer: failed to archive email",
			"to", to,
			"subject", subject,
			"error", err.Error())
	}

	return delivered
}

func (a *Archiving) store(ctx context.Context, msg ArchivedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal archived email: %w", err)
	}

	key := fmt.Sprintf("%s/%s.json", msg.SentAt.Format("2006/01/02"), uuid.NewString())

	return a.storage.Upload(ctx, key, "application/json", bytes.NewReader(body), int64(len(body)))
}
