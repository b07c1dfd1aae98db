package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	apicontext "github.com/dtroode/taskhub-auth/internal/api/http/context"
	"github.com/dtroode/taskhub-auth/internal/api/http/middleware"
	"github.com/dtroode/taskhub-auth/internal/api/http/router"
	httpServer "github.com/dtroode/taskhub-auth/internal/api/http/server"
	"github.com/dtroode/taskhub-auth/internal/config"
	"github.com/dtroode/taskhub-auth/internal/hasher"
	"github.com/dtroode/taskhub-auth/internal/logger"
	"github.com/dtroode/taskhub-auth/internal/mailer"
	"github.com/dtroode/taskhub-auth/internal/metrics"
	"github.com/dtroode/taskhub-auth/internal/model"
	"github.com/dtroode/taskhub-auth/internal/repository/postgres"
	"github.com/dtroode/taskhub-auth/internal/screener"
	"github.com/dtroode/taskhub-auth/internal/server"
	"github.com/dtroode/taskhub-auth/internal/service"
	storage "github.com/dtroode/taskhub-auth/internal/storage/minio"
	"github.com/dtroode/taskhub-auth/internal/token"
	"github.com/dtroode/taskhub-auth/internal/worker/cleanup"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if cfg.App.TrustedEnv {
		logger.Warn("trusted environment: screening and email verification are disabled")
	}

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	userRepo := postgres.NewUserRepository(db)
	verificationRepo := postgres.NewVerificationRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)
	passwordHasher := hasher.NewBcrypt(cfg.BcryptCost)
	mail := newMailer(ctx, cfg, logger)
	abuseScreener := screener.New(screener.Config{
		BlockedDomains: cfg.Screener.BlockedDomains,
		RatePerMinute:  cfg.Screener.RatePerMinute,
		Burst:          cfg.Screener.Burst,
	})

	authService := service.NewAuth(
		userRepo,
		verificationRepo,
		passwordHasher,
		tokenManager,
		mail,
		abuseScreener,
		service.Settings{BaseURL: cfg.App.BaseURL, TrustedEnv: cfg.App.TrustedEnv},
		logger,
	).WithMetrics(collector)

	sqlDB, err := db.SQLDB()
	if err != nil {
		logger.Fatal("failed to open sql handle", "error", err)
	}
	defer sqlDB.Close()
	cleanupJob := cleanup.NewJob(sqlDB, logger).WithMetrics(collector)

	rateLimiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst), logger)
	defer rateLimiter.Stop()

	r := router.New(router.Deps{
		AuthService:    authService,
		ContextManager: apicontext.NewManager(),
		Logger:         logger,
		AllowedOrigin:  cfg.App.BaseURL,
		RateLimiter:    rateLimiter,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),
		Health:         db,
	})

	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port), httpServer.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	sl := server.NewSecurityLayer(cfg.HTTP)

	var wg sync.WaitGroup
	wg.Add(2)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)
	go func() {
		defer wg.Done()
		cleanupJob.Start(ctx, cfg.Cleanup)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newMailer picks SMTP delivery when a relay is configured and a log-only
// sender otherwise. With MinIO enabled every message is also archived.
func newMailer(ctx context.Context, cfg *config.Config, logger *logger.Logger) model.Mailer {
	var m model.Mailer
	if cfg.SMTP.Enabled() {
		smtp, err := mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
		if err != nil {
			logger.Fatal("failed to initialize smtp mailer", "error", err)
		}
		m = smtp
	} else {
		logger.Warn("SMTP_HOST is empty, emails will only be logged")
		m = mailer.NewLog(logger)
	}

	if !cfg.Storage.Enabled {
		return m
	}

	archive, err := storage.Dial(ctx, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to initialize mail archive", "error", err)
	}
	return mailer.NewArchiving(m, archive, logger)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
