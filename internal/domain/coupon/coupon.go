package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage discounts a percentage of the order subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed discounts a fixed amount, capped at the subtotal.
	TypeFixed Type = "fixed"
)

// Valid reports whether t is a known coupon type.
func (t Type) Valid() bool {
	return t == TypePercentage || t == TypeFixed
}

var (
	// ErrNotFound is returned when no active coupon matches the code.
	ErrNotFound = errors.New("invalid coupon code")
	// ErrExpired is returned when the coupon's expiry date has passed.
	ErrExpired = errors.New("coupon has expired")
	// ErrCodeImmutable is returned when an update attempts to change a coupon's code.
	ErrCodeImmutable = errors.New("coupon code cannot be changed")
	// ErrCodeTaken is returned when creating a coupon whose code already exists.
	ErrCodeTaken = errors.New("coupon code already exists")
)

// BelowMinimumError is returned when the order subtotal does not reach the
// coupon's minimum amount. Min is carried for user display.
type BelowMinimumError struct {
	Min decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum amount for this coupon is %s", e.Min.StringFixed(2))
}

// InvalidValueError is returned when a coupon is created or updated with a
// value outside the allowed range for its type.
type InvalidValueError struct {
	Type  Type
	Value decimal.Decimal
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s coupon value %s", e.Type, e.Value)
}

// Coupon is a named discount rule with eligibility constraints. Code is
// stored uppercase and immutable after creation.
type Coupon struct {
	ID         string
	Code       string
	Type       Type
	Value      decimal.Decimal
	MinAmount  decimal.Decimal
	ExpiryDate time.Time
	IsActive   bool
	CreatedAt  time.Time
}

// Repository provides lookup and mutation of coupons.
type Repository interface {
	// FindByCode looks up an active coupon case-insensitively.
	// Returns ErrNotFound when no active coupon matches.
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	List(ctx context.Context) ([]Coupon, error)
	GetByID(ctx context.Context, id string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error

	// ListCodes returns every known coupon code, active or not.
	// Used to build the in-memory code prefilter.
	ListCodes(ctx context.Context) ([]string, error)
}
