package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apicontext "github.com/dtroode/taskhub-auth/internal/api/http/context"
	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/testutil"
)

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_Handle(t *testing.T) {
	userID := uuid.New()
	cm := apicontext.NewManager()

	tests := []struct {
		name       string
		header     string
		setup      func(*mockTokenService)
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{
			name:   "invalid token",
			header: "Bearer bad",
			setup: func(ts *mockTokenService) {
				ts.On("GetUserID", mock.Anything, "bad").Return(uuid.Nil, errors.New("invalid"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token",
			header: "Bearer good",
			setup: func(ts *mockTokenService) {
				ts.On("GetUserID", mock.Anything, "good").Return(userID, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "lowercase scheme",
			header: "bearer good",
			setup: func(ts *mockTokenService) {
				ts.On("GetUserID", mock.Anything, "good").Return(userID, nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := &mockTokenService{}
			if tt.setup != nil {
				tt.setup(ts)
			}
			var gotID uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, _ = cm.GetUserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			NewAuthenticate(ts, cm, testutil.MakeNoopLogger()).Handle(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID, gotID)
			} else {
				assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
			}
			ts.AssertExpectations(t)
		})
	}
}

func TestLogging_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithFormat(-4, "json", &buf)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	NewLogging(log).Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	out := buf.String()
	assert.Contains(t, out, `"path":"/auth/login"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"level":"WARN"`)
}

func TestRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()
	Recovery(testutil.MakeNoopLogger())(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestCORS(t *testing.T) {
	mw := CORS("http://app.test")

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/auth/login", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	rec = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Handle(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2, CleanupInterval: time.Minute}, testutil.MakeNoopLogger())
	defer rl.Stop()
	h := rl.Handle(okHandler())

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1:1000").Code)
	assert.Equal(t, http.StatusOK, send("198.51.100.1:1001").Code)

	limited := send("198.51.100.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), codeRateLimited)

	assert.Equal(t, http.StatusOK, send("198.51.100.2:1000").Code)
	assert.Equal(t, 2, rl.Clients())
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute}, testutil.MakeNoopLogger())
	defer rl.Stop()

	rl.limiterFor("stale")
	rl.limiterFor("fresh")
	rl.mu.Lock()
	rl.limiters["stale"].lastAccess = time.Now().Add(-3 * time.Minute)
	rl.mu.Unlock()

	rl.cleanup(time.Now())
	assert.Equal(t, 1, rl.Clients())
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(PerMinute(60, 10), testutil.MakeNoopLogger())
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 1, retryAfter(2))
	assert.Equal(t, 2, retryAfter(PerMinute(30, 1).Rate))
	assert.Equal(t, 60, retryAfter(0))
}

type fakeRequestRecorder struct {
	route  string
	status int
}

func (f *fakeRequestRecorder) RecordHTTPRequest(route string, statusCode int, _ time.Duration) {
	f.route = route
	f.status = statusCode
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	recorder := &fakeRequestRecorder{}
	r := chi.NewRouter()
	r.Use(Metrics(recorder))
	r.Post("/auth/{action}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{}")))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/auth/{action}", recorder.route)
	assert.Equal(t, http.StatusCreated, recorder.status)
}
