// Package payment abstracts the external card processor. Orders paid by
// card receive a payment intent at creation; confirmation happens on the
// client against the processor and is reconciled by an admin marking the
// order paid.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Intent is a processor-side payment awaiting client confirmation.
type Intent struct {
	ID           string
	ClientSecret string
}

// Gateway creates payment intents with the external processor.
type Gateway interface {
	CreateIntent(ctx context.Context, orderID string, amount decimal.Decimal, currency string) (*Intent, error)
}

// StubGateway issues locally generated intents without contacting a
// processor. Used in development and tests; swap for a real processor
// client in production wiring.
type StubGateway struct{}

// CreateIntent returns a synthetic intent whose client secret embeds the
// intent ID, mirroring the id_secret shape real processors use.
func (StubGateway) CreateIntent(_ context.Context, orderID string, _ decimal.Decimal, _ string) (*Intent, error) {
	id := fmt.Sprintf("pi_%s", uuid.New().String()[:24])
	return &Intent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%s", id, orderID[:8]),
	}, nil
}
