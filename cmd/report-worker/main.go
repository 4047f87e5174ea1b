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
	"gestionale/internal/ledger"
	ledgergoogle "gestionale/internal/ledger/google"
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

	logger.Info("Starting report-worker")

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

	// The worker is useless without its queue, so a broken broker is fatal here.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Google Sheets ledger mirror is optional; sync tasks are dropped without it.
	var ledgerWriter ledger.Writer
	if cfg.LedgerMirrorEnabled {
		client, err := ledgergoogle.New(context.Background(), ledgergoogle.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets ledger client", "error", err)
			os.Exit(1)
		}
		ledgerWriter = client
		logger.Info("Ledger mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Ledger mirror disabled - invoice sync tasks will be dropped")
	}

	reports := services.NewReportService(repo, cfg.ReportCacheMax, cfg.ReportCacheTTL)
	processor := services.NewTaskProcessor(repo, reports, ledgerWriter, cfg.ExportDir, cfg.LedgerMirrorRetryInterval)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := amqpClient.ConsumeTasks(ctx, func(msg *amqp.TaskMessage) error {
			return processor.HandleTask(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Task consumption failed", "error", err)
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

	// Graceful shutdown: give the in-flight task a moment to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down report-worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(2 * time.Second):
		logger.Info("Report-worker shutdown complete")
	}
}
