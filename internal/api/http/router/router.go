package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/taskhub-auth/internal/api/http/handler"
	"github.com/dtroode/taskhub-auth/internal/api/http/middleware"
	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/model"
)

// BasePath is the legacy prefix the auth routes are also served under.
const BasePath = "/api-v1"

const healthTimeout = 2 * time.Second

// AuthService is everything the routes need from the account service.
type AuthService interface {
	handler.AuthService
	middleware.TokenService
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps collects what the router wires together. RateLimiter, Metrics,
// MetricsHandler and Health are optional.
type Deps struct {
	AuthService    AuthService
	ContextManager model.ContextManager
	Logger         *logger.Logger
	AllowedOrigin  string
	RateLimiter    *middleware.RateLimiter
	Metrics        middleware.RequestRecorder
	MetricsHandler http.Handler
	Health         Pinger
}

// Router builds the HTTP surface of the auth service.
type Router struct {
	deps Deps
}

func New(deps Deps) *Router {
	return &Router{deps: deps}
}

// Register returns the configured handler.
func (rt *Router) Register() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(rt.deps.Logger))
	r.Use(middleware.NewLogging(rt.deps.Logger).Handle)
	if rt.deps.Metrics != nil {
		r.Use(middleware.Metrics(rt.deps.Metrics))
	}
	r.Use(middleware.CORS(rt.deps.AllowedOrigin))

	r.Get("/healthz", rt.health)
	if rt.deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", rt.deps.MetricsHandler)
	}

	r.Route("/auth", rt.registerAuthRoutes)
	r.Route(BasePath+"/auth", rt.registerAuthRoutes)

	return r
}

func (rt *Router) registerAuthRoutes(r chi.Router) {
	authHandler := handler.NewAuth(rt.deps.AuthService, rt.deps.ContextManager, rt.deps.Logger)
	authenticate := middleware.NewAuthenticate(rt.deps.AuthService, rt.deps.ContextManager, rt.deps.Logger)

	if rt.deps.RateLimiter != nil {
		r.Use(rt.deps.RateLimiter.Handle)
	}

	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/verify-email", authHandler.VerifyEmail)
	r.Post("/reset-password-request", authHandler.RequestPasswordReset)
	r.Post("/reset-password", authHandler.ResetPassword)

	r.With(authenticate.Handle).Get("/me", authHandler.Me)
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := rt.deps.Health.Ping(ctx); err != nil {
			rt.deps.Logger.Warn("Health check: database unreachable",
				"error", err.Error())
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
