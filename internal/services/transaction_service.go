package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shopledger/internal/core"
)

// TransactionService applies admission rules for transactions and computes
// period statistics. Writes are published to the export pipeline on a
// best-effort basis for downstream spreadsheet sync.
type TransactionService struct {
	store     TransactionStore
	publisher ExportPublisher

	// now is swapped in tests to pin period resolution.
	now func() time.Time
}

func NewTransactionService(store TransactionStore, publisher ExportPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create validates and persists a transaction, then emits a sync event.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionSync(ctx, created.ID); err != nil {
			// The transaction is saved; the worker's pending scan will
			// pick it up later.
			slog.ErrorContext(ctx, "Failed to publish sync event", "id", created.ID, "error", err)
		}
	}

	return created, nil
}

// Delete removes a transaction by id and emits a delete event carrying the
// last known snapshot.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDelete(ctx, deleted); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete event", "id", id, "error", err)
		}
	}

	return nil
}

// List returns transactions matching the filter, most recent first.
func (s *TransactionService) List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Stats resolves the period against the current clock, fetches the matching
// transactions and reduces them into a summary.
func (s *TransactionService) Stats(ctx context.Context, period core.Period, customDay core.Date) (core.Summary, error) {
	dateRange, err := period.Resolve(s.now(), customDay)
	if err != nil {
		return core.Summary{}, err
	}

	txs, err := s.store.ListTransactions(ctx, core.TransactionFilter{Range: dateRange})
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions for stats: %w", err)
	}

	return core.Summarize(txs), nil
}
