package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the move from s to next is allowed:
// pending → paid → shipped → delivered, with cancellation from any
// non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCancelled
	case StatusPaid:
		return next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered || next == StatusCancelled
	}
	return false
}

// Item is one purchased line, frozen at order-creation time. Price is the
// price at purchase; it must survive later catalog changes.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is a finalized purchase record. Items is a denormalized snapshot and
// is never recomputed from live catalog data.
type Order struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId,omitempty"`
	SessionID       string            `json:"sessionId,omitempty"`
	Status          Status            `json:"status"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	TaxAmount       decimal.Decimal   `json:"taxAmount"`
	PaymentIntentID string            `json:"paymentIntentId,omitempty"`
	ShippingAddress map[string]string `json:"shippingAddress,omitempty"`
	Items           []Item            `json:"items"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// NewOrder carries the fields for recording a purchase.
type NewOrder struct {
	UserID          string
	SessionID       string
	Status          Status
	TotalAmount     decimal.Decimal
	TaxAmount       decimal.Decimal
	PaymentIntentID string
	ShippingAddress map[string]string
	Items           []Item
}
