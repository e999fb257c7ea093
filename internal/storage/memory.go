package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopledger/internal/core"
)

// MemoryStore is an in-process store with the same semantics as the SQLite
// repository. It backs the "memory" backend and the test suites.
type MemoryStore struct {
	mu           sync.Mutex
	transactions []core.Transaction
	categories   []core.Category
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, ErrTransactionNotFound
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return t, nil
		}
	}
	return core.Transaction{}, ErrTransactionNotFound
}

func (s *MemoryStore) ListTransactions(_ context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, t := range s.transactions {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.String() != out[j].Date.String() {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, ErrCategoryNotFound
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.categories {
		if c.ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return ErrCategoryNotFound
}

func (s *MemoryStore) SeedDefaultCategories(_ context.Context, defaults []core.Category) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.IsDefault {
			return false, nil
		}
	}

	now := time.Now().UTC()
	for _, c := range defaults {
		c.ID = uuid.NewString()
		c.IsDefault = true
		c.CreatedAt = now
		s.categories = append(s.categories, c)
	}
	return true, nil
}
