package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/db"
	"github.com/Skotchmaster/inventory/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return &GormRepo{DB: gdb}
}

func TestNormalizeIdentity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bob", NormalizeIdentity("Bob"))
	assert.Equal(t, "bob", NormalizeIdentity("  bOB \t"))
	assert.Equal(t, "", NormalizeIdentity("   "))
}

func TestCreateAccount_DuplicateNormalizedIdentity(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first := &models.Account{Identity: "Bob", PasswordHash: "h1"}
	require.NoError(t, r.CreateAccount(ctx, first))
	assert.Equal(t, "bob", first.Identity)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, models.DefaultRole, first.Role)

	second := &models.Account{Identity: "bob ", PasswordHash: "h2"}
	require.ErrorIs(t, r.CreateAccount(ctx, second), ErrDuplicateIdentity)

	var count int64
	require.NoError(t, r.DB.Model(&models.Account{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindByIdentity(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateAccount(ctx, &models.Account{Identity: "alice", PasswordHash: "h"}))

	got, err := r.FindByIdentity(ctx, " ALICE ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Identity)
	assert.Equal(t, "h", got.PasswordHash)

	_, err = r.FindByIdentity(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := r.IdentityExists(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.IdentityExists(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProducts_CRUD(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	older := &models.Product{OwnerID: owner, Name: "older", Price: 1}
	require.NoError(t, r.CreateProduct(ctx, older))
	time.Sleep(5 * time.Millisecond)
	newer := &models.Product{OwnerID: owner, Name: "newer", Price: 2}
	require.NoError(t, r.CreateProduct(ctx, newer))
	require.NoError(t, r.CreateProduct(ctx, &models.Product{OwnerID: other, Name: "foreign"}))

	assert.Equal(t, models.DefaultProductStatus, older.Status)

	items, err := r.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "newer", items[0].Name)
	assert.Equal(t, "older", items[1].Name)

	empty, err := r.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	updated, err := r.UpdateProduct(ctx, older.ID, map[string]any{
		"name":     "renamed",
		"stock":    int64(9),
		"owner_id": other,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.EqualValues(t, 9, updated.Stock)
	assert.Equal(t, owner, updated.OwnerID)

	same, err := r.UpdateProduct(ctx, older.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed", same.Name)

	_, err = r.UpdateProduct(ctx, uuid.New(), map[string]any{"name": "x"})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.DeleteProduct(ctx, older.ID))
	require.ErrorIs(t, r.DeleteProduct(ctx, older.ID), ErrNotFound)
	_, err = r.GetProduct(ctx, older.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchProducts_OwnerScopedLike(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	for _, p := range []models.Product{
		{OwnerID: owner, Name: "Blue Widget", Category: "tools"},
		{OwnerID: owner, Name: "Hammer", Category: "Widgets"},
		{OwnerID: owner, Name: "Saw", Category: "tools"},
		{OwnerID: owner, Name: "100% cotton", Category: "textile"},
		{OwnerID: other, Name: "Widget", Category: "tools"},
	} {
		require.NoError(t, r.CreateProduct(ctx, &p))
	}

	total, items, err := r.SearchProducts(ctx, owner, "widget", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, owner, it.OwnerID)
	}

	total, items, err = r.SearchProducts(ctx, owner, "widget", 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)

	total, _, err = r.SearchProducts(ctx, owner, "%", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
