// Package payments defines the narrow port to the external payment gateway.
package payments

import "context"

// Intent is the gateway-side record of an authorized-but-unconfirmed charge.
// ClientSecret is the opaque handle the client uses to confirm it.
type Intent struct {
	ID           string
	ClientSecret string
}

// Gateway creates payment intents. amountMinor is in the smallest currency
// unit (paisa, cents). Metadata is attached verbatim for reconciliation.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (Intent, error)
}
