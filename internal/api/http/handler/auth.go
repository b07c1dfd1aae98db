package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskhub-auth/internal/apperr"
	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/model"
	"github.com/dtroode/taskhub-auth/internal/service"
)

const maxBodyBytes = 1 << 20

// AuthService defines the account operations served over HTTP.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (service.RegisterResult, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, in service.LoginInput) (service.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in service.ResetPasswordInput) error
	CurrentUser(ctx context.Context, id uuid.UUID) (model.PublicUser, error)
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string           `json:"message"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      model.PublicUser `json:"user"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type meResponse struct {
	User model.PublicUser `json:"user"`
}

// Auth handles the /auth endpoints.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.logger.Debug("Auth handler: processing registration request",
		"email", req.Email)

	res, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		ClientIP: clientIP(r),
	})
	if err != nil {
		h.fail(w, "registration", err, "email", req.Email)
		return
	}

	message := "Verification email sent to your email. Please check and verify your account."
	switch {
	case res.Verified:
		message = "Registration successful! You can now log in."
	case !res.EmailSent:
		message = "Registration successful, but the verification email could not be sent."
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", res.User.ID,
		"verified", res.Verified)

	writeJSON(w, http.StatusCreated, registerResponse{Message: message, User: res.User})
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	res, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, "login", err, "email", req.Email)
		return
	}

	h.logger.Info("Auth handler: login completed",
		"user_id", res.User.ID)

	writeJSON(w, http.StatusOK, loginResponse{
		Message:   "Login successful",
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	})
}

func (h *Auth) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req.Token); err != nil {
		h.fail(w, "email verification", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Email verified successfully"})
}

func (h *Auth) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.fail(w, "password reset request", err, "email", req.Email)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Reset password email sent"})
}

func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.authService.ResetPassword(r.Context(), service.ResetPasswordInput{
		Token:           req.Token,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.fail(w, "password reset", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset successfully"})
}

// Me returns the caller's profile. Requires the authenticate middleware.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperr.NewErrInvalidToken())
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		h.fail(w, "current user", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: user})
}

func (h *Auth) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		h.logger.Debug("Auth handler: malformed request body",
			"path", r.URL.Path,
			"error", err.Error())
		writeError(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return false
	}
	return true
}

func (h *Auth) fail(w http.ResponseWriter, operation string, err error, args ...any) {
	appErr := apperr.From(err)
	args = append(args, "operation", operation, "code", appErr.Code, "error", err.Error())
	if appErr.Kind == apperr.KindInternal {
		h.logger.Error("Auth handler: request failed", args...)
	} else {
		h.logger.Info("Auth handler: request rejected", args...)
	}
	writeError(w, appErr)
}

// clientIP expects RemoteAddr to be rewritten by a real-IP middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
