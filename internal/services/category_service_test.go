package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core"
	"shopledger/internal/storage"
)

func newCategoryService() (*CategoryService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return NewCategoryService(store, core.DefaultCategories), store
}

func TestCategoryCreate(t *testing.T) {
	svc, _ := newCategoryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Category{Name: "  Fuel  ", Type: core.Expense})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Fuel", created.Name)
	assert.Equal(t, core.DefaultIcon, created.Icon)
	assert.Equal(t, core.DefaultColor, created.Color)
	assert.False(t, created.IsDefault)
}

func TestCategoryCreateValidation(t *testing.T) {
	svc, _ := newCategoryService()
	ctx := context.Background()

	_, err := svc.Create(ctx, core.Category{Name: "   ", Type: core.Expense})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = svc.Create(ctx, core.Category{Name: "Fuel", Type: "both"})
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestCategoryCreateNeverMarksDefault(t *testing.T) {
	svc, _ := newCategoryService()

	created, err := svc.Create(context.Background(), core.Category{
		Name: "Sneaky", Type: core.Expense, IsDefault: true,
	})
	require.NoError(t, err)
	assert.False(t, created.IsDefault)
}

func TestCategoryDeleteDefaultProtected(t *testing.T) {
	svc, _ := newCategoryService()
	ctx := context.Background()

	_, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	for _, c := range cats {
		err := svc.Delete(ctx, c.ID)
		assert.ErrorIs(t, err, ErrDefaultCategory, "category %q", c.Name)
	}
}

func TestCategoryDeleteUserCategory(t *testing.T) {
	svc, _ := newCategoryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Category{Name: "Fuel", Type: core.Expense})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestCategoryDeleteMissing(t *testing.T) {
	svc, _ := newCategoryService()
	err := svc.Delete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	svc, _ := newCategoryService()
	ctx := context.Background()

	msg, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Default categories initialized successfully", msg)

	msg, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Default categories already exist", msg)

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories))
}

func TestSeedDefaultsLeavesUserCategoriesAlone(t *testing.T) {
	svc, _ := newCategoryService()
	ctx := context.Background()

	// A user category alone does not satisfy the default check.
	_, err := svc.Create(ctx, core.Category{Name: "Fuel", Type: core.Expense})
	require.NoError(t, err)

	_, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories)+1)
}
