// Package apperr carries the kind of a failed account operation so the
// transport can choose a status without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error codes returned to clients.
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeEmailRejected        = "EMAIL_REJECTED"
	CodeEmailTaken           = "EMAIL_TAKEN"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeEmailNotVerified     = "EMAIL_NOT_VERIFIED"
	CodeEmailAlreadyVerified = "EMAIL_ALREADY_VERIFIED"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeResetAlreadySent     = "RESET_ALREADY_SENT"
	CodePasswordMismatch     = "PASSWORD_MISMATCH"
	CodeMailDeliveryFailed   = "MAIL_DELIVERY_FAILED"
	CodeInternal             = "INTERNAL_ERROR"
)

// Error is an operation failure with a client-safe message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// From returns the *Error in err's chain, or an internal error wrapping err.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// KindOf reports the kind of err. Unknown errors are internal.
func KindOf(err error) Kind {
	return From(err).Kind
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Unauthorized(code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Internal hides err behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "Internal server error", Err: err}
}

// InternalWithMessage is an internal failure whose message is safe to show.
func InternalWithMessage(code, message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: code, Message: message, Err: err}
}

func NewErrInvalidToken() *Error {
	return Unauthorized(CodeInvalidToken, "Unauthorized")
}

func NewErrTokenExpired() *Error {
	return Unauthorized(CodeTokenExpired, "Token expired")
}

func NewErrInvalidCredentials() *Error {
	return Unauthorized(CodeInvalidCredentials, "Invalid email or password")
}

func NewErrEmailIsTaken() *Error {
	return Conflict(CodeEmailTaken, "Email address already in use")
}
