package coupon

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service carries the admin-side coupon mutations and enforces the data
// invariants the storage layer cannot express: the code is immutable after
// creation, percentage values stay in (0, 100], and fixed values are positive.
type Service struct {
	repo   Repository
	filter *CodeFilter
}

// NewService creates a coupon admin Service. filter may be nil.
func NewService(repo Repository, filter *CodeFilter) *Service {
	return &Service{repo: repo, filter: filter}
}

// List returns all coupons, newest first.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	return s.repo.List(ctx)
}

// Get returns a single coupon by ID. Returns ErrNotFound on a miss.
func (s *Service) Get(ctx context.Context, id string) (*Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and persists a new coupon. The code is normalized to
// uppercase. Returns ErrCodeTaken for duplicate codes and
// *InvalidValueError for out-of-range values.
func (s *Service) Create(ctx context.Context, c *Coupon) (*Coupon, error) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return nil, errors.New("coupon code is required")
	}
	if err := validateValue(c.Type, c.Value); err != nil {
		return nil, err
	}
	if c.MinAmount.IsNegative() {
		return nil, errors.New("minimum amount cannot be negative")
	}

	c.ID = uuid.New().String()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	if s.filter != nil {
		s.filter.Add(c.Code)
	}
	return c, nil
}

// Update applies changes to an existing coupon. The code is immutable:
// an update carrying a different code fails with ErrCodeImmutable.
func (s *Service) Update(ctx context.Context, c *Coupon) (*Coupon, error) {
	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if c.Code != "" && !strings.EqualFold(c.Code, existing.Code) {
		return nil, ErrCodeImmutable
	}
	if err := validateValue(c.Type, c.Value); err != nil {
		return nil, err
	}
	if c.MinAmount.IsNegative() {
		return nil, errors.New("minimum amount cannot be negative")
	}

	c.Code = existing.Code
	c.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a coupon by ID. Returns ErrNotFound on a miss.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateValue(t Type, v decimal.Decimal) error {
	if !t.Valid() {
		return errors.Errorf("unsupported coupon type: %q", t)
	}
	if !v.IsPositive() {
		return &InvalidValueError{Type: t, Value: v}
	}
	if t == TypePercentage && v.GreaterThan(hundred) {
		return &InvalidValueError{Type: t, Value: v}
	}
	return nil
}
