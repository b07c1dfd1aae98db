package model

import "context"

// Mailer delivers HTML email. Send reports delivery and never fails loudly.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) bool
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
