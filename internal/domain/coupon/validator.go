package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Discount holds a computed discount together with the coupon that granted it.
type Discount struct {
	Coupon *Coupon
	Amount decimal.Decimal
}

// Validator validates a coupon code against an order subtotal and returns the
// computed discount. The pre-checkout validate endpoint and order creation
// both go through the same implementation.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error)
}

// RepoValidator implements Validator by looking up coupons from a Repository
// and applying them via Compute. An optional CodeFilter short-circuits
// lookups for codes that cannot exist.
type RepoValidator struct {
	repo   Repository
	filter *CodeFilter
	now    func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
// filter may be nil to disable prefiltering.
func NewRepoValidator(repo Repository, filter *CodeFilter) *RepoValidator {
	return &RepoValidator{repo: repo, filter: filter, now: time.Now}
}

// Validate looks up the coupon for the given code and computes its discount
// against the subtotal. Returns ErrNotFound for unknown or inactive codes,
// ErrExpired past the expiry date, and *BelowMinimumError under the minimum.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error) {
	if v.filter != nil && !v.filter.MayContain(code) {
		return nil, ErrNotFound
	}

	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	amount, err := Compute(c, subtotal, v.now())
	if err != nil {
		return nil, err
	}

	return &Discount{Coupon: c, Amount: amount}, nil
}
