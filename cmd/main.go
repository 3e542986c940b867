package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnthoniusHendriyanto/blog-auth-service/config"
	"github.com/AnthoniusHendriyanto/blog-auth-service/db"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/handler"
	repo "github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/repository/postgres"
	redisrepo "github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/repository/redis"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/service"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/events"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/logging"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, dbPool); err != nil {
			return err
		}
		logger.Info("migrations_applied")
	}

	userRepo := repo.NewPostgresRepository(dbPool)
	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessExpiryMin, cfg.RefreshExpiryMin)

	var sessions domain.RefreshTokenRepository = userRepo
	if cfg.SessionStore == config.SessionStoreRedis {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = redisrepo.NewRefreshSessionRepository(rdb, tokenService.GetRefreshTokenExpiry())
	}
	logger.Info("session_store_ready", "store", cfg.SessionStore)

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("event_publisher_ready", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	userService := service.NewUserService(userRepo, sessions, tokenService, cfg,
		service.WithEventPublisher(publisher),
		service.WithMetrics(metrics.NewAuthMetrics(registry)),
	)
	authHandler := handler.NewAuthHandler(userService, time.Duration(cfg.CookieMaxAgeHours)*time.Hour)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handler.ErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(handler.RequestLogger(logger))

	handler.RegisterRoutes(app, authHandler)
	handler.RegisterOpsRoutes(app, registry)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_start", "port", cfg.Port, "env", cfg.Env)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
