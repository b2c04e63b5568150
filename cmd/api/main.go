package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/bizops-api/internal/application/service"
	"github.com/sangkips/bizops-api/internal/config"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/internal/infrastructure/database"
	"github.com/sangkips/bizops-api/internal/infrastructure/logger"
	"github.com/sangkips/bizops-api/internal/infrastructure/metrics"
	"github.com/sangkips/bizops-api/internal/infrastructure/notification"
	infraRepo "github.com/sangkips/bizops-api/internal/infrastructure/repository"
	"github.com/sangkips/bizops-api/internal/presentation/http/handler"
	"github.com/sangkips/bizops-api/internal/presentation/http/middleware"
	"github.com/sangkips/bizops-api/internal/presentation/http/routes"
	"github.com/sangkips/bizops-api/pkg/email"
	"github.com/sangkips/bizops-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLog, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	if err := run(cfg, zapLog); err != nil {
		zapLog.Error("server exited with error", zap.Error(err))
		_ = zapLog.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, zapLog *zap.Logger) error {
	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.EnvFile != "" {
		zapLog.Info("configuration loaded", zap.String("env_file", cfg.EnvFile))
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, zapLog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, zapLog); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	// Repositories
	store := infraRepo.NewStore(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)

	// Order notifications are sent after commit from a background queue
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.SMTP.Host,
		SMTPPort:     cfg.SMTP.Port,
		SMTPUsername: cfg.SMTP.Username,
		SMTPPassword: cfg.SMTP.Password,
		FromName:     cfg.SMTP.FromName,
		FromEmail:    cfg.SMTP.FromEmail,
	})
	var sender notification.Sender
	if emailService.Configured() {
		sender = emailService
	} else {
		zapLog.Warn("SMTP host not configured, order notifications are disabled")
	}
	dispatcher := notification.NewDispatcher(cfg.Notification, sender, orderMetrics, zapLog)
	dispatcher.Start()

	// Services and handlers
	orderService := service.NewOrderService(store, dispatcher, orderMetrics, zapLog)
	handlers := &routes.Handlers{
		Order: handler.NewOrderHandler(orderService),
	}

	rateLimiter := middleware.NewTenantRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})
	defer rateLimiter.Close()

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.JWT.Issuer)

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Log:             zapLog,
		TenantRepo:      store.Tenants(),
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Metrics:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		HealthCheck:     sqlDB.PingContext,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeIdempotencyKeys(ctx, idempotencyRepo, cfg.Idempotency.CleanupInterval, zapLog)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLog.Info("starting server",
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		zapLog.Info("shutdown signal received")
	}

	timeout := cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	// requests are drained, so no new notifications can be queued
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		zapLog.Warn("notification dispatcher did not drain", zap.Error(err))
	}

	zapLog.Info("server stopped")
	return nil
}

// purgeIdempotencyKeys deletes expired idempotency keys until ctx is done
func purgeIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, interval time.Duration, zapLog *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				zapLog.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if deleted > 0 {
				zapLog.Debug("purged idempotency keys", zap.Int64("deleted", deleted))
			}
		}
	}
}
