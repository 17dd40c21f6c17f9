package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"techstore/internal/products"
)

// CartItem is one line in a session's cart. Carts are scoped to an anonymous
// session id, not to an account. At most one item exists per
// (sessionId, productId) pair; adds merge into the existing row.
type CartItem struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// Line is a cart item materialized with its current catalog entry and the
// server-computed line total.
type Line struct {
	CartItem
	Product   products.Product `json:"product"`
	ItemTotal decimal.Decimal  `json:"itemTotal"`
}
