/**
 * @description
 * This is the main entry point for the settlement service. One process
 * hosts both the admin HTTP API and the cron trigger that invokes the
 * payout runner on its fixed daily cadence. It initializes configuration,
 * the database pool, the event producer, the repositories and services,
 * then starts the scheduler and the HTTP server.
 */
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/briandchristian/settlement-service/internal/api"
	"github.com/briandchristian/settlement-service/internal/app"
	"github.com/briandchristian/settlement-service/internal/config"
	"github.com/briandchristian/settlement-service/internal/store"
	"github.com/briandchristian/settlement-service/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env if present, then the real environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Establish database connection with connection pool configuration
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Event producer, with a no-op fallback when the broker is unreachable.
	var publisher rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("rabbitmq unavailable, events will be dropped", "error", err)
			publisher = &rabbitmq.EventProducerFallback{Logger: logger}
		} else {
			publisher = producer
		}
	} else {
		publisher = &rabbitmq.EventProducerFallback{Logger: logger}
	}
	defer publisher.Close()

	// Repositories
	sellerRepo := store.NewSellerRepository(dbpool)
	payoutRepo := store.NewPayoutRepository(dbpool)
	settingsRepo := store.NewSettingsRepository(dbpool)

	// Services
	sellerService := app.NewSellerService(sellerRepo, logger)
	allocator := app.NewChannelAllocator(sellerRepo, publisher, logger)
	runner := app.NewPayoutRunner(payoutRepo, settingsRepo, publisher, logger)

	// Cron trigger for the daily payout run
	jobs := app.NewJobs(runner, logger)
	scheduler := app.NewScheduler(jobs, logger, *cfg)
	scheduler.Start()
	logger.Info("scheduler started")

	// Admin HTTP API
	handler := api.NewHandler(sellerService, allocator, runner, payoutRepo, settingsRepo)
	router := api.NewRouter(handler, cfg.InternalAPIKey)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting settlement service", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal to gracefully shut down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	stopCtx := scheduler.Stop()
	<-stopCtx.Done() // Wait for running jobs to finish
	logger.Info("settlement service stopped gracefully")
}
