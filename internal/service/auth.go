package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskhub-auth/internal/apperr"
	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/mailer"
	"github.com/dtroode/taskhub-auth/internal/model"
)

const (
	opRegister             = "register"
	opVerifyEmail          = "verify_email"
	opLogin                = "login"
	opRequestPasswordReset = "request_password_reset"
	opResetPassword        = "reset_password"

	templateVerifyEmail   = "verify_email"
	templateResetPassword = "reset_password"
)

// Auth runs the account lifecycle: registration, email verification,
// login and password reset. All state lives in the stores.
type Auth struct {
	userStore         model.UserStore
	verificationStore model.VerificationStore
	hasher            model.PasswordHasher
	tokens            model.TokenManager
	mailer            model.Mailer
	screener          model.Screener
	settings          Settings
	logger            *logger.Logger
	metrics           Recorder
	now               func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuth(
	userStore model.UserStore,
	verificationStore model.VerificationStore,
	hasher model.PasswordHasher,
	tokens model.TokenManager,
	mailer model.Mailer,
	screener model.Screener,
	settings Settings,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:         userStore,
		verificationStore: verificationStore,
		hasher:            hasher,
		tokens:            tokens,
		mailer:            mailer,
		screener:          screener,
		settings:          settings,
		logger:            logger,
		metrics:           nopRecorder{},
		now:               time.Now,
	}
}

// WithMetrics sets the recorder for operation outcomes.
func (a *Auth) WithMetrics(r Recorder) *Auth {
	if r != nil {
		a.metrics = r
	}
	return a
}

func (a *Auth) Register(ctx context.Context, in RegisterInput) (res RegisterResult, err error) {
	defer func() { a.observe(opRegister, err) }()

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	a.logger.Debug("Auth service: starting user registration",
		"email", in.Email)

	if err := validateRegistration(in); err != nil {
		return RegisterResult{}, err
	}

	if !a.settings.TrustedEnv {
		decision := a.screener.Evaluate(ctx, model.ScreenRequest{Email: in.Email, IP: in.ClientIP})
		if !decision.Allowed {
			a.logger.Info("Auth service: registration rejected by screener",
				"email", in.Email,
				"reason", decision.Reason)
			return RegisterResult{}, apperr.Forbidden(apperr.CodeEmailRejected, "Invalid email address")
		}
	}

	_, err = a.userStore.GetByEmail(ctx, in.Email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", in.Email)
		return RegisterResult{}, apperr.NewErrEmailIsTaken()
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", in.Email,
			"error", err.Error())
		return RegisterResult{}, apperr.Internal(err)
	}

	hash, err := a.hashPassword(in.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	now := a.now().UTC()
	saved, err := a.userStore.Create(ctx, model.User{
		ID:              uuid.New(),
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    hash,
		IsEmailVerified: a.settings.TrustedEnv,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		return RegisterResult{}, apperr.NewErrEmailIsTaken()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", in.Email,
			"error", err.Error())
		return RegisterResult{}, apperr.Internal(err)
	}

	if a.settings.TrustedEnv {
		a.logger.Info("Auth service: user registered and auto-verified",
			"email", in.Email,
			"user_id", saved.ID)
		return RegisterResult{User: saved.Public(), Verified: true}, nil
	}

	issued, err := a.tokens.Issue(saved.ID, model.PurposeEmailVerification, model.EmailVerificationTTL)
	if err != nil {
		a.logger.Error("Auth service: failed to issue verification token",
			"user_id", saved.ID,
			"error", err.Error())
		return RegisterResult{}, apperr.Internal(err)
	}

	body, err := mailer.VerificationBody(a.link("/verify-email", issued.Token))
	if err != nil {
		return RegisterResult{}, apperr.Internal(err)
	}

	if _, err := a.createRecord(ctx, saved.ID, model.PurposeEmailVerification, issued); err != nil {
		a.logger.Error("Auth service: failed to create verification record",
			"user_id", saved.ID,
			"error", err.Error())
		return RegisterResult{}, apperr.Internal(err)
	}

	sent := a.send(ctx, templateVerifyEmail, saved.Email, mailer.SubjectVerifyEmail, body)
	if !sent {
		a.logger.Warn("Auth service: verification email not sent",
			"email", saved.Email,
			"user_id", saved.ID)
	}

	a.logger.Info("Auth service: user registered, verification pending",
		"email", saved.Email,
		"user_id", saved.ID,
		"email_sent", sent)

	return RegisterResult{User: saved.Public(), EmailSent: sent}, nil
}

func (a *Auth) VerifyEmail(ctx context.Context, token string) (err error) {
	defer func() { a.observe(opVerifyEmail, err) }()

	a.logger.Debug("Auth service: verifying email")

	record, user, err := a.redeem(ctx, token, model.PurposeEmailVerification)
	if err != nil {
		return err
	}

	if user.IsEmailVerified {
		a.logger.Info("Auth service: email already verified",
			"user_id", user.ID)
		return apperr.Validation(apperr.CodeEmailAlreadyVerified, "Email already verified")
	}

	if err := a.userStore.MarkEmailVerified(ctx, user.ID); err != nil {
		a.logger.Error("Auth service: failed to mark email verified",
			"user_id", user.ID,
			"error", err.Error())
		return apperr.Internal(err)
	}

	if err := a.verificationStore.DeleteByID(ctx, record.ID); err != nil {
		a.logger.Error("Auth service: failed to consume verification record",
			"user_id", user.ID,
			"record_id", record.ID,
			"error", err.Error())
		return apperr.Internal(err)
	}

	a.logger.Info("Auth service: email verified",
		"user_id", user.ID)

	return nil
}

func (a *Auth) Login(ctx context.Context, in LoginInput) (res LoginResult, err error) {
	defer func() { a.observe(opLogin, err) }()

	email := strings.TrimSpace(in.Email)
	a.logger.Debug("Auth service: starting user login",
		"email", email)

	user, err := a.userStore.GetCredentialsByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.equalizeTiming(in.Password)
		a.logger.Info("Auth service: login for unknown email",
			"email", email)
		return LoginResult{}, apperr.NewErrInvalidCredentials()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user credentials",
			"email", email,
			"error", err.Error())
		return LoginResult{}, apperr.Internal(err)
	}

	if !a.hasher.Verify(in.Password, user.PasswordHash) {
		a.logger.Info("Auth service: wrong password",
			"user_id", user.ID)
		return LoginResult{}, apperr.NewErrInvalidCredentials()
	}

	if !a.settings.TrustedEnv && !user.IsEmailVerified {
		a.logger.Info("Auth service: login with unverified email",
			"user_id", user.ID)
		return LoginResult{}, apperr.Validation(apperr.CodeEmailNotVerified,
			"Email not verified. Please verify your email before logging in.")
	}

	issued, err := a.tokens.Issue(user.ID, model.PurposeSession, model.SessionTTL)
	if err != nil {
		a.logger.Error("Auth service: failed to issue session token",
			"user_id", user.ID,
			"error", err.Error())
		return LoginResult{}, apperr.Internal(err)
	}

	now := a.now().UTC()
	if err := a.userStore.UpdateLastLogin(ctx, user.ID, now); err != nil {
		a.logger.Error("Auth service: failed to update last login",
			"user_id", user.ID,
			"error", err.Error())
		return LoginResult{}, apperr.Internal(err)
	}
	user.LastLogin = &now

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return LoginResult{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User:      user.Public(),
	}, nil
}

func (a *Auth) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { a.observe(opRequestPasswordReset, err) }()

	email = strings.TrimSpace(email)
	a.logger.Debug("Auth service: password reset requested",
		"email", email)

	if email == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "Email is required")
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return apperr.Internal(err)
	}

	if !user.IsEmailVerified {
		return apperr.Validation(apperr.CodeEmailNotVerified, "Please verify your email first")
	}

	existing, err := a.verificationStore.FindByUser(ctx, user.ID, model.PurposePasswordReset)
	switch {
	case err == nil:
		if !existing.Expired(a.now()) {
			a.logger.Info("Auth service: password reset already pending",
				"user_id", user.ID,
				"expires_at", existing.ExpiresAt)
			return apperr.Conflict(apperr.CodeResetAlreadySent, "Reset password request already sent")
		}
		if err := a.verificationStore.DeleteByID(ctx, existing.ID); err != nil {
			a.logger.Error("Auth service: failed to delete expired reset record",
				"user_id", user.ID,
				"record_id", existing.ID,
				"error", err.Error())
			return apperr.Internal(err)
		}
	case !errors.Is(err, model.ErrNotFound):
		a.logger.Error("Auth service: failed to look up pending reset",
			"user_id", user.ID,
			"error", err.Error())
		return apperr.Internal(err)
	}

	issued, err := a.tokens.Issue(user.ID, model.PurposePasswordReset, model.PasswordResetTTL)
	if err != nil {
		a.logger.Error("Auth service: failed to issue reset token",
			"user_id", user.ID,
			"error", err.Error())
		return apperr.Internal(err)
	}

	body, err := mailer.PasswordResetBody(a.link("/reset-password", issued.Token))
	if err != nil {
		return apperr.Internal(err)
	}

	record, err := a.createRecord(ctx, user.ID, model.PurposePasswordReset, issued)
	if errors.Is(err, model.ErrAlreadyExists) {
		a.logger.Info("Auth service: concurrent password reset request",
			"user_id", user.ID)
		return apperr.Conflict(apperr.CodeResetAlreadySent, "Reset password request already sent")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create reset record",
			"user_id", user.ID,
			"error", err.Error())
		return apperr.Internal(err)
	}

	if !a.send(ctx, templateResetPassword, user.Email, mailer.SubjectResetPassword, body) {
		// roll back so the user can ask again right away
		if err := a.verificationStore.DeleteByID(ctx, record.ID); err != nil {
			a.logger.Error("Auth service: failed to roll back reset record",
				"user_id", user.ID,
				"record_id", record.ID,
				"error", err.Error())
		}
		return apperr.InternalWithMessage(apperr.CodeMailDeliveryFailed, "Failed to send reset password email", nil)
	}

	a.logger.Info("Auth service: password reset email sent",
		"user_id", user.ID)

	return nil
}

func (a *Auth) ResetPassword(ctx context.Context, in ResetPasswordInput) (err error) {
	defer func() { a.observe(opResetPassword, err) }()

	a.logger.Debug("Auth service: resetting password")

	record, user, err := a.redeem(ctx, in.Token, model.PurposePasswordReset)
	if err != nil {
		return err
	}

	if in.NewPassword != in.ConfirmPassword {
		return apperr.Validation(apperr.CodePasswordMismatch, "Passwords do not match")
	}
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}

	hash, err := a.hashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	if err := a.userStore.UpdatePassword(ctx, user.ID, hash); err != nil {
		a.logger.Error("Auth service: failed to update password",
			"user_id", user.ID,
			"error", err.Error())
		return apperr.Internal(err)
	}

	if err := a.verificationStore.DeleteByID(ctx, record.ID); err != nil {
		a.logger.Error("Auth service: failed to consume reset record",
			"user_id", user.ID,
			"record_id", record.ID,
			"error", err.Error())
		return apperr.Internal(err)
	}

	a.logger.Info("Auth service: password reset",
		"user_id", user.ID)

	return nil
}

// GetUserID resolves a session token to its user.
func (a *Auth) GetUserID(_ context.Context, token string) (uuid.UUID, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil || claims.Purpose != model.PurposeSession {
		return uuid.Nil, apperr.NewErrInvalidToken()
	}
	return claims.Subject, nil
}

// CurrentUser returns the public view of an authenticated user.
func (a *Auth) CurrentUser(ctx context.Context, id uuid.UUID) (model.PublicUser, error) {
	user, err := a.userStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.PublicUser{}, apperr.NewErrInvalidToken()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", id,
			"error", err.Error())
		return model.PublicUser{}, apperr.Internal(err)
	}
	return user.Public(), nil
}

// redeem validates a single-use token against its stored record and loads
// the owner. Expired records are removed on sight.
func (a *Auth) redeem(ctx context.Context, token string, purpose model.Purpose) (model.VerificationRecord, model.User, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil || claims.Purpose != purpose {
		a.logger.Info("Auth service: rejected token",
			"purpose", purpose)
		return model.VerificationRecord{}, model.User{}, apperr.NewErrInvalidToken()
	}

	record, err := a.verificationStore.FindByUserAndToken(ctx, claims.Subject, token)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: no record for token",
			"user_id", claims.Subject,
			"purpose", purpose)
		return model.VerificationRecord{}, model.User{}, apperr.NewErrInvalidToken()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get verification record",
			"user_id", claims.Subject,
			"error", err.Error())
		return model.VerificationRecord{}, model.User{}, apperr.Internal(err)
	}
	if record.Purpose != purpose {
		return model.VerificationRecord{}, model.User{}, apperr.NewErrInvalidToken()
	}

	if record.Expired(a.now()) {
		if err := a.verificationStore.DeleteByID(ctx, record.ID); err != nil {
			a.logger.Error("Auth service: failed to delete expired record",
				"user_id", claims.Subject,
				"record_id", record.ID,
				"error", err.Error())
		}
		return model.VerificationRecord{}, model.User{}, apperr.NewErrTokenExpired()
	}

	user, err := a.userStore.GetByID(ctx, claims.Subject)
	if errors.Is(err, model.ErrNotFound) {
		return model.VerificationRecord{}, model.User{}, apperr.NewErrInvalidToken()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", claims.Subject,
			"error", err.Error())
		return model.VerificationRecord{}, model.User{}, apperr.Internal(err)
	}

	return record, user, nil
}

func (a *Auth) createRecord(ctx context.Context, userID uuid.UUID, purpose model.Purpose, issued model.IssuedToken) (model.VerificationRecord, error) {
	return a.verificationStore.Create(ctx, model.VerificationRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     issued.Token,
		Purpose:   purpose,
		ExpiresAt: issued.ExpiresAt,
		CreatedAt: a.now().UTC(),
	})
}

func (a *Auth) hashPassword(password string) (string, error) {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"error", err.Error())
		return "", apperr.Internal(err)
	}
	return hash, nil
}

// equalizeTiming spends one bcrypt comparison so unknown emails take as
// long to reject as wrong passwords.
func (a *Auth) equalizeTiming(password string) {
	a.dummyOnce.Do(func() {
		digest, err := a.hasher.Hash("taskhub-timing-equalizer")
		if err == nil {
			a.dummyDigest = digest
		}
	})
	if a.dummyDigest != "" {
		a.hasher.Verify(password, a.dummyDigest)
	}
}

func (a *Auth) send(ctx context.Context, template, to, subject, body string) bool {
	sent := a.mailer.Send(ctx, to, subject, body)
	a.metrics.RecordMail(template, sent)
	return sent
}

func (a *Auth) link(path, token string) string {
	return strings.TrimRight(a.settings.BaseURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func (a *Auth) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = apperr.KindOf(err).String()
	}
	a.metrics.RecordOperation(operation, result)
}
