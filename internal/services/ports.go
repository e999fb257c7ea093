// Package services holds the application logic between the HTTP boundary
// and the stores: admission rules, default seeding, stats computation and
// export-event publishing.
package services

import (
	"context"

	"shopledger/internal/core"
)

type (
	// TransactionStore persists transactions. Implemented by the SQLite
	// repository and the in-memory store.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
	}

	// CategoryStore persists categories.
	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		GetCategory(ctx context.Context, id string) (core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		DeleteCategory(ctx context.Context, id string) error
		SeedDefaultCategories(ctx context.Context, defaults []core.Category) (inserted bool, err error)
	}

	// ExportPublisher emits transaction events for the export worker.
	// Publishing is best effort; a failure never fails the request.
	ExportPublisher interface {
		PublishTransactionSync(ctx context.Context, id string) error
		PublishTransactionDelete(ctx context.Context, t core.Transaction) error
	}
)
