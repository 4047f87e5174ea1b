package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gestionale/internal/amqp"
	"gestionale/internal/config"
	"gestionale/internal/observability/metrics"
	"gestionale/internal/services"
	"gestionale/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting overdue-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	metrics.Init()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, cfg.VATRate)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional here: without it invoices are still marked overdue but
	// monthly export scheduling is skipped.
	var publisher services.TaskPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without export scheduling", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	reports := services.NewReportService(repo, cfg.ReportCacheMax, cfg.ReportCacheTTL)
	processor := services.NewOverdueProcessor(repo, reports, publisher)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Overdue processor configured",
		"interval", cfg.OverdueInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	go func() {
		if err := processor.Run(ctx, cfg.OverdueInterval); err != nil && err != context.Canceled {
			logger.Error("Overdue processing loop failed", "error", err)
		}
		cancel()
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down overdue-worker...")
	cancel()

	// Give the current pass a moment to finish
	time.Sleep(time.Second)
	logger.Info("Overdue-worker shutdown complete")
}
