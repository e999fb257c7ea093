package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/amqp"
	"shopledger/internal/core"
	"shopledger/internal/storage"
)

type fakeStore struct {
	transactions map[string]core.Transaction
	pending      []string
	exported     []string
	errored      []string
}

func newFakeStore(ts ...core.Transaction) *fakeStore {
	s := &fakeStore{transactions: map[string]core.Transaction{}}
	for _, t := range ts {
		s.transactions[t.ID] = t
		s.pending = append(s.pending, t.ID)
	}
	return s
}

func (s *fakeStore) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, storage.ErrTransactionNotFound
	}
	return t, nil
}

func (s *fakeStore) ListPendingExport(_ context.Context, limit int) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, id := range s.pending {
		if len(out) == limit {
			break
		}
		out = append(out, s.transactions[id])
	}
	return out, nil
}

func (s *fakeStore) MarkExported(_ context.Context, id string) error {
	s.exported = append(s.exported, id)
	for i, p := range s.pending {
		if p == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) MarkExportError(_ context.Context, id string) error {
	s.errored = append(s.errored, id)
	return nil
}

type fakeSheet struct {
	rows    []string
	deleted []string
	fail    bool
}

func (f *fakeSheet) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if f.fail {
		return "", errors.New("sheets unavailable")
	}
	f.rows = append(f.rows, t.ID)
	return fmt.Sprintf("Transactions!A%d:G%d", len(f.rows), len(f.rows)), nil
}

func (f *fakeSheet) DeleteTransactionRow(_ context.Context, id string) error {
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func pendingTransaction(id string, cents int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Date:        core.NewDate(2026, 9, 1),
		Type:        core.Expense,
		Category:    "Misc",
		PaymentType: core.Cash,
		Description: "stock purchase",
		Amount:      core.Money{Cents: cents},
	}
}

func TestHandleSyncMessage(t *testing.T) {
	store := newFakeStore(pendingTransaction("t1", 500))
	sheet := &fakeSheet{}
	w := NewExportWorker(store, sheet, sheet, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("t1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, sheet.rows)
	assert.Equal(t, []string{"t1"}, store.exported)
}

func TestHandleSyncMessageMissingTransaction(t *testing.T) {
	store := newFakeStore()
	sheet := &fakeSheet{}
	w := NewExportWorker(store, sheet, sheet, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("ghost"))
	assert.ErrorIs(t, err, storage.ErrTransactionNotFound)
	assert.Empty(t, sheet.rows)
}

func TestHandleSyncMessageMarksErrorOnAppendFailure(t *testing.T) {
	store := newFakeStore(pendingTransaction("t1", 500))
	sheet := &fakeSheet{fail: true}
	w := NewExportWorker(store, sheet, sheet, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("t1"))
	require.Error(t, err)
	assert.Equal(t, []string{"t1"}, store.errored)
	assert.Empty(t, store.exported)
}

func TestHandleDeleteMessage(t *testing.T) {
	store := newFakeStore()
	sheet := &fakeSheet{}
	w := NewExportWorker(store, sheet, sheet, 10)

	msg := amqp.NewTransactionDeleteMessage(pendingTransaction("t1", 500))
	require.NoError(t, w.HandleDeleteMessage(context.Background(), msg))
	assert.Equal(t, []string{"t1"}, sheet.deleted)
}

func TestHandleDeleteMessageWithoutDeleter(t *testing.T) {
	store := newFakeStore()
	w := NewExportWorker(store, &fakeSheet{}, nil, 10)

	msg := amqp.NewTransactionDeleteMessage(pendingTransaction("t1", 500))
	assert.NoError(t, w.HandleDeleteMessage(context.Background(), msg))
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	store := newFakeStore(
		pendingTransaction("t1", 100),
		pendingTransaction("t2", 200),
		pendingTransaction("t3", 300),
	)
	sheet := &fakeSheet{}
	w := NewExportWorker(store, sheet, sheet, 2)

	require.NoError(t, w.ProcessPending(context.Background()))
	assert.Len(t, sheet.rows, 2)

	// The next scan picks up the remainder.
	require.NoError(t, w.ProcessPending(context.Background()))
	assert.Len(t, sheet.rows, 3)
}

func TestProcessPendingContinuesAfterFailure(t *testing.T) {
	store := newFakeStore(pendingTransaction("t1", 100))
	sheet := &fakeSheet{fail: true}
	w := NewExportWorker(store, sheet, sheet, 10)

	// Append failures are logged and marked, not returned.
	require.NoError(t, w.ProcessPending(context.Background()))
	assert.Equal(t, []string{"t1"}, store.errored)
}

func TestStartupCheckDrainsBacklog(t *testing.T) {
	store := newFakeStore(
		pendingTransaction("t1", 100),
		pendingTransaction("t2", 200),
	)
	sheet := &fakeSheet{}
	w := NewExportWorker(store, sheet, sheet, 10)

	require.NoError(t, w.StartupCheck(context.Background()))
	assert.ElementsMatch(t, []string{"t1", "t2"}, sheet.rows)
	assert.Empty(t, store.pending)
}
