// Package orders is the ledger of finalized purchases.
package orders

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no order matches the given id.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidTransition indicates a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store is the persistence contract for orders.
type Store interface {
	CreateOrder(ctx context.Context, no NewOrder) (Order, error)
	GetOrderByID(ctx context.Context, id string) (Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status Status) (Order, error)
}

type Conf struct {
	store Store
}

func NewConf(store Store) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Conf{store: store}, nil
}

// Create records a purchase. The item snapshot is taken as-is and is
// immutable afterwards.
func (c *Conf) Create(ctx context.Context, no NewOrder) (Order, error) {
	if no.Status == "" {
		no.Status = StatusPending
	}
	if !no.Status.Valid() {
		return Order{}, fmt.Errorf("unknown order status %q", no.Status)
	}
	if len(no.Items) == 0 {
		return Order{}, fmt.Errorf("order must have at least one item")
	}
	return c.store.CreateOrder(ctx, no)
}

func (c *Conf) GetByID(ctx context.Context, id string) (Order, error) {
	return c.store.GetOrderByID(ctx, id)
}

func (c *Conf) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return c.store.ListUserOrders(ctx, userID)
}

// UpdateStatus applies a lifecycle transition.
func (c *Conf) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	current, err := c.store.GetOrderByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !current.Status.CanTransitionTo(status) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}
	return c.store.UpdateOrderStatus(ctx, id, status)
}
