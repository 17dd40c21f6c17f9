// Package cart owns per-session cart lines and their merge semantics.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"techstore/internal/products"
)

var (
	// ErrNotFound indicates no cart item matches the given id.
	ErrNotFound = errors.New("cart item not found")
	// ErrInvalidQuantity indicates a quantity below 1. Removal is a separate,
	// explicit operation; quantity updates never delete rows.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Store is the persistence contract for cart lines. UpsertCartItem must
// perform the read-sum-write merge as one atomic step per
// (sessionID, productID) key; two concurrent adds for the same product must
// never drop an increment.
type Store interface {
	UpsertCartItem(ctx context.Context, sessionID, productID string, quantity int) (CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (CartItem, error)
	RemoveCartItem(ctx context.Context, id string) (bool, error)
	ClearCart(ctx context.Context, sessionID string) error
	GetCartItems(ctx context.Context, sessionID string) ([]CartItem, error)
}

type Conf struct {
	store   Store
	catalog *products.Conf
}

func NewConf(store Store, catalog *products.Conf) (*Conf, error) {
	if store == nil || catalog == nil {
		return nil, fmt.Errorf("store or catalog conf is nil")
	}
	return &Conf{store: store, catalog: catalog}, nil
}

// AddItem adds quantity of a product to the session's cart, merging into the
// existing line when one exists for the same product.
func (c *Conf) AddItem(ctx context.Context, sessionID, productID string, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, ErrInvalidQuantity
	}
	if _, err := c.catalog.GetByID(ctx, productID); err != nil {
		return CartItem{}, fmt.Errorf("looking up product %s: %w", productID, err)
	}
	return c.store.UpsertCartItem(ctx, sessionID, productID, quantity)
}

// UpdateQuantity sets a line's quantity to an absolute value.
func (c *Conf) UpdateQuantity(ctx context.Context, itemID string, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, ErrInvalidQuantity
	}
	return c.store.UpdateCartItemQuantity(ctx, itemID, quantity)
}

// RemoveItem deletes a line. Idempotent; reports whether a row existed.
func (c *Conf) RemoveItem(ctx context.Context, itemID string) (bool, error) {
	return c.store.RemoveCartItem(ctx, itemID)
}

// Clear deletes every line for the session. Always succeeds, even on an
// already-empty cart.
func (c *Conf) Clear(ctx context.Context, sessionID string) error {
	return c.store.ClearCart(ctx, sessionID)
}

// Items returns the raw cart lines for a session, without product data.
func (c *Conf) Items(ctx context.Context, sessionID string) ([]CartItem, error) {
	return c.store.GetCartItems(ctx, sessionID)
}

// ListWithProducts joins each line with its current catalog entry. Lines
// whose product no longer exists are dropped; the catalog is append-only, so
// this only guards against data loaded from elsewhere.
func (c *Conf) ListWithProducts(ctx context.Context, sessionID string) ([]Line, error) {
	items, err := c.store.GetCartItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		p, err := c.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, products.ErrNotFound) {
				continue
			}
			return nil, err
		}
		lines = append(lines, Line{
			CartItem:  item,
			Product:   p,
			ItemTotal: p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return lines, nil
}
