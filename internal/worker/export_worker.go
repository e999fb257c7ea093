// Package worker exports transactions from the local store to the
// configured spreadsheet, driven by AMQP messages with a periodic scan as
// backup.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"shopledger/internal/amqp"
	"shopledger/internal/core"
	"shopledger/internal/export"
)

// ExportStore is the slice of the storage layer the worker needs.
type ExportStore interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

type ExportWorker struct {
	store     ExportStore
	appender  export.RowAppender
	deleter   export.RowDeleter
	batchSize int
}

func NewExportWorker(store ExportStore, appender export.RowAppender, deleter export.RowDeleter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		appender:  appender,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage exports one transaction referenced by an AMQP message.
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	t, err := w.store.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exportTransaction(ctx, t); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	return nil
}

// HandleDeleteMessage removes the exported row for a deleted transaction. The
// local record is already gone, so only the id from the message is needed.
func (w *ExportWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No row deleter configured, skipping spreadsheet deletion", "id", msg.ID)
		return nil
	}

	if err := w.deleter.DeleteTransactionRow(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete transaction row: %w", err)
	}

	slog.InfoContext(ctx, "Deleted transaction row from spreadsheet", "id", msg.ID)
	return nil
}

// ProcessPending exports transactions still marked pending. This is a backup
// mechanism in case AMQP messages were lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, t := range pending {
		if err := w.exportTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", t.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupCheck exports any backlog left from missed messages or worker
// downtime. It uses a larger batch than the periodic scan.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup", "count", len(pending))

	exported := 0
	failed := 0
	for _, t := range pending {
		if err := w.exportTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", t.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, t core.Transaction) error {
	ref, err := w.appender.AppendTransaction(ctx, t)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to spreadsheet: %w", err)
	}

	if err := w.store.MarkExported(ctx, t.ID); err != nil {
		// The export itself worked; surface the bookkeeping failure only in logs.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", t.ID,
		"row_ref", ref,
		"amount_cents", t.Amount.Cents)
	return nil
}
