package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontext "github.com/dtroode/taskhub-auth/internal/api/http/context"
	"github.com/dtroode/taskhub-auth/internal/api/http/middleware"
	"github.com/dtroode/taskhub-auth/internal/apperr"
	"github.com/dtroode/taskhub-auth/internal/metrics"
	"github.com/dtroode/taskhub-auth/internal/model"
	"github.com/dtroode/taskhub-auth/internal/service"
	"github.com/dtroode/taskhub-auth/internal/testutil"
)

type stubAuth struct {
	userID uuid.UUID
}

func (s *stubAuth) Register(_ context.Context, in service.RegisterInput) (service.RegisterResult, error) {
	return service.RegisterResult{User: model.PublicUser{ID: s.userID, Email: in.Email}, EmailSent: true}, nil
}

func (s *stubAuth) VerifyEmail(context.Context, string) error {
	return apperr.NewErrInvalidToken()
}

func (s *stubAuth) Login(context.Context, service.LoginInput) (service.LoginResult, error) {
	return service.LoginResult{Token: "session"}, nil
}

func (s *stubAuth) RequestPasswordReset(context.Context, string) error {
	return nil
}

func (s *stubAuth) ResetPassword(context.Context, service.ResetPasswordInput) error {
	return nil
}

func (s *stubAuth) CurrentUser(_ context.Context, id uuid.UUID) (model.PublicUser, error) {
	return model.PublicUser{ID: id, Name: "Ann"}, nil
}

func (s *stubAuth) GetUserID(_ context.Context, token string) (uuid.UUID, error) {
	if token != "session" {
		return uuid.Nil, apperr.NewErrInvalidToken()
	}
	return s.userID, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	if deps.AuthService == nil {
		deps.AuthService = &stubAuth{userID: uuid.New()}
	}
	deps.ContextManager = apicontext.NewManager()
	deps.Logger = testutil.MakeNoopLogger()
	deps.AllowedOrigin = "http://app.test"
	return New(deps).Register()
}

func serve(h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AuthRoutesUnderBothPrefixes(t *testing.T) {
	h := newTestRouter(t, Deps{})

	for _, prefix := range []string{"", BasePath} {
		t.Run("prefix "+prefix, func(t *testing.T) {
			rec := serve(h, http.MethodPost, prefix+"/auth/register", `{"email":"ann@example.com","name":"Ann","password":"s3cretpass"}`, nil)
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))

			rec = serve(h, http.MethodPost, prefix+"/auth/login", `{"email":"ann@example.com","password":"s3cretpass"}`, nil)
			assert.Equal(t, http.StatusOK, rec.Code)

			rec = serve(h, http.MethodPost, prefix+"/auth/verify-email", `{"token":"x"}`, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = serve(h, http.MethodPost, prefix+"/auth/reset-password-request", `{"email":"ann@example.com"}`, nil)
			assert.Equal(t, http.StatusOK, rec.Code)

			rec = serve(h, http.MethodPost, prefix+"/auth/reset-password", `{"token":"t","newPassword":"a","confirmPassword":"a"}`, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRouter_Me(t *testing.T) {
	userID := uuid.New()
	h := newTestRouter(t, Deps{AuthService: &stubAuth{userID: userID}})

	rec := serve(h, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodGet, "/auth/me", "", http.Header{"Authorization": {"Bearer reset-token"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodGet, BasePath+"/auth/me", "", http.Header{"Authorization": {"Bearer session"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
}

func TestRouter_Health(t *testing.T) {
	rec := serve(newTestRouter(t, Deps{Health: stubPinger{}}), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(newTestRouter(t, Deps{Health: stubPinger{err: errors.New("down")}}), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	h := newTestRouter(t, Deps{Metrics: collector, MetricsHandler: metrics.Handler(reg)})

	serve(h, http.MethodPost, "/auth/login", `{}`, nil)

	rec := serve(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taskhub_auth_http_requests_total{route="/auth/login",status_code="200"} 1`)
}

func TestRouter_RateLimited(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: 0.01, Burst: 1, CleanupInterval: time.Minute}, testutil.MakeNoopLogger())
	defer rl.Stop()
	h := newTestRouter(t, Deps{RateLimiter: rl})

	rec := serve(h, http.MethodPost, "/auth/login", `{}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodPost, "/auth/login", `{}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = serve(h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	rec := serve(newTestRouter(t, Deps{}), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
