package service

import (
	"time"

	"github.com/dtroode/taskhub-auth/internal/model"
)

// Settings is the deployment configuration the account flows depend on.
type Settings struct {
	// BaseURL is the frontend origin that emailed links point to.
	BaseURL string
	// TrustedEnv skips abuse screening, auto-verifies new accounts and
	// lifts the verified-email requirement at login.
	TrustedEnv bool
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	ClientIP string
}

type RegisterResult struct {
	User model.PublicUser
	// Verified is set when the account is usable without email verification.
	Verified bool
	// EmailSent reports whether the verification email was handed off.
	EmailSent bool
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      model.PublicUser
}

type ResetPasswordInput struct {
	Token           string
	NewPassword     string
	ConfirmPassword string
}

// Recorder receives operation outcomes for monitoring.
type Recorder interface {
	RecordOperation(operation, result string)
	RecordMail(template string, delivered bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string) {}
func (nopRecorder) RecordMail(string, bool)        {}
