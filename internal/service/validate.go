package service

import (
	"net/mail"

	"github.com/dtroode/taskhub-auth/internal/apperr"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

func validateEmail(email string) error {
	if email == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Validation(apperr.CodeInvalidInput, "Invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation(apperr.CodeInvalidInput, "Password must be at least 8 characters")
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > maxPasswordLength {
		return apperr.Validation(apperr.CodeInvalidInput, "Password must be at most 72 bytes")
	}
	return nil
}

func validateRegistration(in RegisterInput) error {
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if in.Name == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "Name is required")
	}
	return validatePassword(in.Password)
}
