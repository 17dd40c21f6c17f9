// Package products owns the catalog. It is read-mostly: the cart and
// checkout pipeline only ever read from it.
package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates no product matches the given id.
var ErrNotFound = errors.New("product not found")

// Store is the persistence contract for the catalog.
type Store interface {
	InsertProduct(ctx context.Context, np NewProduct) (Product, error)
	GetProductByID(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context, f Filter) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	CountProducts(ctx context.Context) (int, error)
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

// List returns products matching every provided filter field.
func (c *Conf) List(ctx context.Context, f Filter) ([]Product, error) {
	return c.store.ListProducts(ctx, f)
}

// Search matches the query case-insensitively against name, description and
// category. An empty or whitespace-only query matches nothing.
func (c *Conf) Search(ctx context.Context, query string) ([]Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	return c.store.SearchProducts(ctx, query)
}

func (c *Conf) GetByID(ctx context.Context, id string) (Product, error) {
	return c.store.GetProductByID(ctx, id)
}

// Insert adds a product to the catalog.
func (c *Conf) Insert(ctx context.Context, np NewProduct) (Product, error) {
	if !np.Price.IsPositive() {
		return Product{}, fmt.Errorf("price must be positive")
	}
	return c.store.InsertProduct(ctx, np)
}

// EnsureSeedData loads the sample catalog into an empty store.
func (c *Conf) EnsureSeedData(ctx context.Context) error {
	n, err := c.store.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("counting products: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, np := range seedProducts() {
		if _, err := c.store.InsertProduct(ctx, np); err != nil {
			return fmt.Errorf("seeding product %q: %w", np.Name, err)
		}
	}
	return nil
}

// MatchesQuery reports whether p matches the search query. Shared by store
// implementations so memory and SQL search agree.
func MatchesQuery(p Product, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

// MatchesFilter reports whether p passes every provided filter field.
func MatchesFilter(p Product, f Filter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	return true
}
