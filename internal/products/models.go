package products

import "github.com/shopspring/decimal"

// Product is catalog reference data. Price is the single source of truth for
// every monetary calculation; it travels as an exact decimal, never a float.
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price"`
	OriginalPrice  *decimal.Decimal  `json:"originalPrice,omitempty"`
	Category       string            `json:"category"`
	ImageURL       string            `json:"imageUrl"`
	Rating         decimal.Decimal   `json:"rating"`
	ReviewCount    int               `json:"reviewCount"`
	InStock        bool              `json:"inStock"`
	Featured       bool              `json:"featured"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
}

// NewProduct carries the fields for catalog inserts.
type NewProduct struct {
	Name           string            `json:"name" validate:"required"`
	Description    string            `json:"description" validate:"required"`
	Price          decimal.Decimal   `json:"price" validate:"required"`
	OriginalPrice  *decimal.Decimal  `json:"originalPrice"`
	Category       string            `json:"category" validate:"required"`
	ImageURL       string            `json:"imageUrl" validate:"required"`
	Rating         decimal.Decimal   `json:"rating"`
	ReviewCount    int               `json:"reviewCount"`
	InStock        bool              `json:"inStock"`
	Featured       bool              `json:"featured"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
}

// Filter narrows List results. Zero-valued fields impose no constraint.
type Filter struct {
	Category string
	Featured *bool
}
