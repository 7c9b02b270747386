package coupon

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Compute calculates the discount the given coupon grants on an order
// subtotal. It is a pure function: callers run it once when the shopper
// applies a code and again inside order creation, against the then-current
// subtotal, so a client-supplied discount amount is never trusted.
//
// Returns ErrExpired when now is past the expiry date and a
// *BelowMinimumError when the subtotal does not reach the coupon's minimum.
// The result is clamped to [0, subtotal] and rounded to 2 decimal places: a
// discount never makes the payable amount negative.
func Compute(c *Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if now.After(c.ExpiryDate) {
		return decimal.Zero, ErrExpired
	}
	if subtotal.LessThan(c.MinAmount) {
		return decimal.Zero, &BelowMinimumError{Min: c.MinAmount}
	}

	var amount decimal.Decimal
	switch c.Type {
	case TypePercentage:
		amount = subtotal.Mul(c.Value).Div(hundred)
	case TypeFixed:
		amount = c.Value
	default:
		return decimal.Zero, errors.Errorf("unsupported coupon type: %q", c.Type)
	}

	amount = decimal.Min(amount, subtotal)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2), nil
}
