package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"techstore/internal/products"
	"techstore/internal/users"
)

func insertProduct(t *testing.T, db *DB, name, price string) products.Product {
	t.Helper()
	p, err := db.InsertProduct(context.Background(), products.NewProduct{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    "smartphones",
		ImageURL:    "https://example.com/" + name + ".jpg",
		InStock:     true,
	})
	require.NoError(t, err)
	return p
}

func TestUpsertCartItemMergesSameProduct(t *testing.T) {
	ctx := context.Background()
	db := New()
	p := insertProduct(t, db, "phone", "100")

	first, err := db.UpsertCartItem(ctx, "sess-1", p.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, first.Quantity)

	second, err := db.UpsertCartItem(ctx, "sess-1", p.ID, 2)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 3, second.Quantity)

	items, err := db.GetCartItems(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].Quantity)
}

func TestUpsertCartItemSeparatesSessions(t *testing.T) {
	ctx := context.Background()
	db := New()
	p := insertProduct(t, db, "phone", "100")

	_, err := db.UpsertCartItem(ctx, "sess-1", p.ID, 1)
	require.NoError(t, err)
	_, err = db.UpsertCartItem(ctx, "sess-2", p.ID, 1)
	require.NoError(t, err)

	items, err := db.GetCartItems(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestRemoveCartItemIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := New()
	p := insertProduct(t, db, "phone", "100")

	item, err := db.UpsertCartItem(ctx, "sess-1", p.ID, 1)
	require.NoError(t, err)

	removed, err := db.RemoveCartItem(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = db.RemoveCartItem(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestClearCartRemovesOnlyThatSession(t *testing.T) {
	ctx := context.Background()
	db := New()
	p := insertProduct(t, db, "phone", "100")

	_, err := db.UpsertCartItem(ctx, "sess-1", p.ID, 2)
	require.NoError(t, err)
	_, err = db.UpsertCartItem(ctx, "sess-2", p.ID, 5)
	require.NoError(t, err)

	require.NoError(t, db.ClearCart(ctx, "sess-1"))
	require.NoError(t, db.ClearCart(ctx, "sess-1"))

	items, err := db.GetCartItems(ctx, "sess-1")
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = db.GetCartItems(ctx, "sess-2")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	db := New()

	_, err := db.CreateUser(ctx, users.NewUser{Username: "alice", Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, users.NewUser{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, users.ErrAlreadyExists)

	_, err = db.CreateUser(ctx, users.NewUser{Username: "bob", Email: "alice@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, users.ErrAlreadyExists)
}
