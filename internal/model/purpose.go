package model

import "time"

// Purpose is the single intended use of a signed token.
type Purpose string

const (
	PurposeEmailVerification Purpose = "email-verification"
	PurposePasswordReset     Purpose = "reset-password"
	PurposeSession           Purpose = "login"
)

// Token lifetimes per purpose.
const (
	EmailVerificationTTL = time.Hour
	PasswordResetTTL     = 15 * time.Minute
	SessionTTL           = 7 * 24 * time.Hour
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeEmailVerification, PurposePasswordReset, PurposeSession:
		return true
	}
	return false
}

func (p Purpose) String() string {
	return string(p)
}
