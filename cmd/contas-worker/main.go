package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/backend"
	"contas/internal/config"
	"contas/internal/mirror"
	gledger "contas/internal/mirror/google"
	memledger "contas/internal/mirror/memory"
	"contas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting contas-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads records to enrich ledger rows. It shares the
	// server's backend selection.
	result, err := backend.Build(backend.Config{
		Type:           backend.Type(cfg.DataBackend),
		RecordStoreURL: cfg.RecordStoreURL,
		RemoteTimeout:  cfg.RemoteTimeout,
		SQLiteDBPath:   cfg.SQLiteDBPath,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize record store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	var ledger mirror.LedgerWriter
	if cfg.MirrorSpreadsheetID != "" {
		client, err := gledger.New(context.Background(), gledger.Config{
			SpreadsheetID:   cfg.MirrorSpreadsheetID,
			SheetName:       cfg.MirrorSheetName,
			CredentialsFile: cfg.MirrorCredentialsFile,
			CredentialsJSON: cfg.MirrorCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize ledger client", "error", err)
			os.Exit(1)
		}
		ledger = client
		logger.Info("Ledger client initialized", "spreadsheet_id", cfg.MirrorSpreadsheetID)
	} else {
		ledger = memledger.New()
		logger.Info("Ledger mirroring disabled - no MIRROR_SPREADSHEET_ID provided, using in-memory ledger")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mirrorWorker := worker.NewMirrorWorker(result.Store, ledger)

	consumeDone := make(chan error, 1)
	go func() {
		logger.Info("Consuming record events", "queue", cfg.AMQPQueue)
		consumeDone <- amqpClient.ConsumeWithReconnect(ctx, func(msg *amqp.RecordEventMessage) error {
			return mirrorWorker.HandleRecordEvent(ctx, msg)
		})
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("Shutting down worker", "signal", s.String())
		cancel()
		<-consumeDone
	case err := <-consumeDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Consumer stopped", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Worker stopped")
}
