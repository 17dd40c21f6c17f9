package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// StripeGateway implements Gateway against the Stripe PaymentIntents API.
type StripeGateway struct {
	timeout time.Duration
}

// NewStripeGateway configures the Stripe client. The timeout bounds every
// CreateIntent call; on timeout the outcome is unknown and the error is
// surfaced, never treated as success.
func NewStripeGateway(apiKey string, timeout time.Duration) (*StripeGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stripe api key is empty")
	}
	stripe.Key = apiKey
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StripeGateway{timeout: timeout}, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("creating stripe payment intent: %w", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
