package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/advisor"
	"contas/internal/amqp"
	"contas/internal/auth"
	"contas/internal/backend"
	"contas/internal/cache"
	"contas/internal/config"
	apphttp "contas/internal/http"
	"contas/internal/rates"
	"contas/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

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

	// Eventing is optional. The service mutates fine without it.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, record events disabled", "error", err)
		} else {
			publisher = amqpClient
			defer amqpClient.Close()
		}
	}

	var analyzer services.Analyzer
	if cfg.AdvisorURL != "" {
		analyzer = advisor.NewClient(cfg.AdvisorURL, cfg.RemoteTimeout)
	}

	svc := services.New(result.Store, services.Options{
		Cache: cache.Options{
			FreshFor:   cfg.CacheFreshFor,
			RetainFor:  cfg.CacheRetainFor,
			MaxEntries: cfg.CacheMaxEntries,
		},
		Publisher: publisher,
		Rates:     rates.NewClient(cfg.RatesURL, cfg.RateFallback, cfg.RemoteTimeout),
		Advisor:   analyzer,
	})

	manager := cache.NewManager()
	svc.RegisterCaches(manager)
	manager.StartCleanup(cfg.CacheCleanupInterval)
	defer manager.Stop()

	server := apphttp.NewServer(apphttp.Config{Port: cfg.Port}, svc, auth.NewVerifier(cfg.JWTSecret))

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
	}()

	logger.Info("Starting server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := server.Start(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	<-done
	logger.Info("Server stopped")
}
