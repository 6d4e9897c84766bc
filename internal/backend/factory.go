package backend

import (
	"fmt"
	"log/slog"

	"contas/internal/store/memory"
	"contas/internal/store/rest"
	"contas/internal/storage"
)

// Build constructs the record store named by the config.
func Build(cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case RemoteBackend:
		client := rest.NewClient(cfg.RecordStoreURL, cfg.RemoteTimeout)
		logger.Info("Initialized remote record store", "url", cfg.RecordStoreURL)
		return &Result{Store: client}, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite record store: %w", err)
		}
		logger.Info("Initialized sqlite record store", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		logger.Info("Initialized in-memory record store")
		return &Result{Store: memory.New()}, nil
	}

	return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
}
