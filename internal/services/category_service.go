package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shopledger/internal/core"
)

// ErrDefaultCategory is returned when a delete targets a seeded category.
var ErrDefaultCategory = errors.New("default categories cannot be deleted")

// CategoryService applies admission rules for categories and owns the
// default-seeding flow.
type CategoryService struct {
	store    CategoryStore
	defaults []core.Category
}

func NewCategoryService(store CategoryStore, defaults []core.Category) *CategoryService {
	return &CategoryService{
		store:    store,
		defaults: defaults,
	}
}

// List returns every category.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Create validates and persists a user-defined category. Missing display
// metadata falls back to the shared defaults.
func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.IsDefault = false
	if strings.TrimSpace(c.Icon) == "" {
		c.Icon = core.DefaultIcon
	}
	if strings.TrimSpace(c.Color) == "" {
		c.Color = core.DefaultColor
	}

	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// Delete removes a category unless it is part of the seeded default set.
// Existing transactions keep their category strings either way; the linkage
// is by name, not by id.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return ErrDefaultCategory
	}
	return s.store.DeleteCategory(ctx, id)
}

// SeedDefaults inserts the default category set when none exists yet. The
// existence check and the inserts run atomically in the store, so repeated
// calls never double-seed.
func (s *CategoryService) SeedDefaults(ctx context.Context) (string, error) {
	inserted, err := s.store.SeedDefaultCategories(ctx, s.defaults)
	if err != nil {
		return "", fmt.Errorf("seed default categories: %w", err)
	}
	if !inserted {
		return "Default categories already exist", nil
	}

	slog.InfoContext(ctx, "Seeded default categories", "count", len(s.defaults))
	return "Default categories initialized successfully", nil
}
