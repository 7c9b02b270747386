package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	byCode  map[string]*Coupon
	codes   []string
	findErr error
	calls   int
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Coupon, error) {
	m.calls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockCouponRepo) List(_ context.Context) ([]Coupon, error)        { return nil, nil }
func (m *mockCouponRepo) GetByID(_ context.Context, _ string) (*Coupon, error) {
	return nil, ErrNotFound
}
func (m *mockCouponRepo) Create(_ context.Context, _ *Coupon) error { return nil }
func (m *mockCouponRepo) Update(_ context.Context, _ *Coupon) error { return nil }
func (m *mockCouponRepo) Delete(_ context.Context, _ string) error  { return nil }
func (m *mockCouponRepo) ListCodes(_ context.Context) ([]string, error) {
	return m.codes, nil
}

func newValidator(t *testing.T, repo *mockCouponRepo, withFilter bool) *RepoValidator {
	t.Helper()
	var filter *CodeFilter
	if withFilter {
		var err error
		filter, err = NewCodeFilter(context.Background(), repo)
		require.NoError(t, err)
	}
	v := NewRepoValidator(repo, filter)
	v.now = func() time.Time { return testNow }
	return v
}

func TestValidate_PercentageDiscount(t *testing.T) {
	repo := &mockCouponRepo{byCode: map[string]*Coupon{
		"SAVE10": activeCoupon(TypePercentage, "10", "0"),
	}}
	v := newValidator(t, repo, false)

	d, err := v.Validate(context.Background(), "SAVE10", decimal.RequireFromString("200"))
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", d.Coupon.Code)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(20)))
}

func TestValidate_UnknownCode(t *testing.T) {
	v := newValidator(t, &mockCouponRepo{byCode: map[string]*Coupon{}}, false)

	_, err := v.Validate(context.Background(), "NOPE", decimal.NewFromInt(100))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestValidate_FilterShortCircuit(t *testing.T) {
	// The filter was built from an empty code set, so an unknown code must be
	// rejected without hitting the repository.
	repo := &mockCouponRepo{byCode: map[string]*Coupon{}}
	v := newValidator(t, repo, true)

	_, err := v.Validate(context.Background(), "GUESSED1", decimal.NewFromInt(100))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, repo.calls)
}

func TestValidate_FilterPassesKnownCode(t *testing.T) {
	repo := &mockCouponRepo{
		byCode: map[string]*Coupon{"SAVE10": activeCoupon(TypePercentage, "10", "0")},
		codes:  []string{"SAVE10"},
	}
	v := newValidator(t, repo, true)

	d, err := v.Validate(context.Background(), "SAVE10", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, repo.calls)
}

func TestValidate_ExpiredCoupon(t *testing.T) {
	expired := activeCoupon(TypePercentage, "10", "0")
	expired.ExpiryDate = testNow.Add(-time.Hour)
	repo := &mockCouponRepo{byCode: map[string]*Coupon{"SAVE10": expired}}
	v := newValidator(t, repo, false)

	_, err := v.Validate(context.Background(), "SAVE10", decimal.NewFromInt(100))
	require.ErrorIs(t, err, ErrExpired)
}

func TestValidate_BelowMinimum(t *testing.T) {
	repo := &mockCouponRepo{byCode: map[string]*Coupon{
		"BIGSPEND": activeCoupon(TypeFixed, "50", "1000"),
	}}
	v := newValidator(t, repo, false)

	_, err := v.Validate(context.Background(), "BIGSPEND", decimal.NewFromInt(999))

	var minErr *BelowMinimumError
	require.ErrorAs(t, err, &minErr)
}

func TestValidate_RepoFailure(t *testing.T) {
	repo := &mockCouponRepo{findErr: errors.New("connection reset")}
	v := newValidator(t, repo, false)

	_, err := v.Validate(context.Background(), "SAVE10", decimal.NewFromInt(100))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
