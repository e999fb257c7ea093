// Package backend selects and assembles the storage layer from
// configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"shopledger/internal/config"
	"shopledger/internal/services"
	"shopledger/internal/storage"
)

// Store is the union of the persistence interfaces the services consume.
type Store interface {
	services.TransactionStore
	services.CategoryStore
}

// Backend bundles a store with its lifecycle hooks.
type Backend struct {
	Store Store

	// Ready reports whether the store can serve requests. Nil for stores
	// without a meaningful probe.
	Ready func(context.Context) error

	// Close releases store resources. Never nil.
	Close func() error
}

// New builds the backend named by cfg.DataBackend.
func New(cfg *config.Config) (*Backend, error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		slog.Info("Using SQLite backend", "path", cfg.SQLiteDBPath)
		return &Backend{
			Store: repo,
			Ready: repo.Ping,
			Close: repo.Close,
		}, nil
	case "memory":
		slog.Info("Using in-memory backend; data is lost on restart")
		return &Backend{
			Store: storage.NewMemoryStore(),
			Close: func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
