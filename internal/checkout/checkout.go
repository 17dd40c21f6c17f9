// Package checkout turns a session's live cart into an authoritative charge
// and a payment-intent request. Prices always come from the catalog at
// computation time; nothing client-supplied ever reaches the charged amount.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"techstore/internal/cart"
	"techstore/internal/payments"
	"techstore/internal/products"
)

var (
	// ErrEmptyCart indicates the session has nothing to check out.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductVanished indicates a cart line references a product that no
	// longer exists. No gateway call is made.
	ErrProductVanished = errors.New("product no longer exists")
	// ErrGatewayUnavailable indicates the payment gateway is unconfigured or
	// unreachable. Distinct from validation failures so callers can answer
	// "try again later" instead of "fix your cart".
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// Metadata keys attached to each payment intent. The webhook rebuilds the
// order from these on confirmation.
const (
	MetaSessionID = "sessionId"
	MetaItems     = "items"
	MetaSubtotal  = "subtotal"
	MetaTax       = "tax"
	MetaTotal     = "total"
)

// IntentItem is the per-line snapshot stored in intent metadata.
type IntentItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Result is returned to the caller for client-side confirmation.
type Result struct {
	ClientSecret string          `json:"clientSecret"`
	Amount       decimal.Decimal `json:"amount"`
	Items        []cart.Line     `json:"items"`
}

// Calculator is the checkout pipeline over cart, catalog and gateway.
type Calculator struct {
	cart     *cart.Conf
	catalog  *products.Conf
	gateway  payments.Gateway
	taxRate  decimal.Decimal
	currency string
}

// NewCalculator wires the pipeline. gateway may be nil when unconfigured;
// CreatePaymentIntent then fails with ErrGatewayUnavailable.
func NewCalculator(cartConf *cart.Conf, catalog *products.Conf, gateway payments.Gateway, taxRate decimal.Decimal, currency string) (*Calculator, error) {
	if cartConf == nil || catalog == nil {
		return nil, fmt.Errorf("cart or catalog conf is nil")
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must not be negative")
	}
	if currency == "" {
		return nil, fmt.Errorf("currency is empty")
	}
	return &Calculator{
		cart:     cartConf,
		catalog:  catalog,
		gateway:  gateway,
		taxRate:  taxRate,
		currency: currency,
	}, nil
}

// CreatePaymentIntent recomputes the session's cart total from current
// catalog prices, applies tax, and asks the gateway for an intent over the
// total in integer minor units (rounded half-up). Validation failures
// (ErrEmptyCart, ErrProductVanished) are decided before any gateway call.
func (c *Calculator) CreatePaymentIntent(ctx context.Context, sessionID string) (Result, error) {
	items, err := c.cart.Items(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("reading cart: %w", err)
	}
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}

	subtotal := decimal.Zero
	lines := make([]cart.Line, 0, len(items))
	snapshot := make([]IntentItem, 0, len(items))
	for _, item := range items {
		p, err := c.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, products.ErrNotFound) {
				return Result{}, fmt.Errorf("%w: %s", ErrProductVanished, item.ProductID)
			}
			return Result{}, fmt.Errorf("looking up product %s: %w", item.ProductID, err)
		}
		itemTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(itemTotal)
		lines = append(lines, cart.Line{CartItem: item, Product: p, ItemTotal: itemTotal})
		snapshot = append(snapshot, IntentItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: p.Price})
	}

	tax := subtotal.Mul(c.taxRate).Round(2)
	total := subtotal.Add(tax)
	amountMinor := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	if c.gateway == nil {
		return Result{}, ErrGatewayUnavailable
	}

	itemsJSON, err := json.Marshal(snapshot)
	if err != nil {
		return Result{}, fmt.Errorf("marshaling item snapshot: %w", err)
	}
	metadata := map[string]string{
		MetaSessionID: sessionID,
		MetaItems:     string(itemsJSON),
		MetaSubtotal:  subtotal.String(),
		MetaTax:       tax.String(),
		MetaTotal:     total.String(),
	}

	intent, err := c.gateway.CreateIntent(ctx, amountMinor, c.currency, metadata)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrGatewayUnavailable, err)
	}

	return Result{
		ClientSecret: intent.ClientSecret,
		Amount:       total,
		Items:        lines,
	}, nil
}
