package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func activeCoupon(typ Type, value, minAmount string) *Coupon {
	return &Coupon{
		ID:         "c1",
		Code:       "SAVE10",
		Type:       typ,
		Value:      decimal.RequireFromString(value),
		MinAmount:  decimal.RequireFromString(minAmount),
		ExpiryDate: testNow.Add(24 * time.Hour),
		IsActive:   true,
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		coupon   *Coupon
		subtotal string
		want     string
	}{
		{
			name:     "percentage",
			coupon:   activeCoupon(TypePercentage, "10", "0"),
			subtotal: "250.00",
			want:     "25",
		},
		{
			name:     "percentage rounds to cents",
			coupon:   activeCoupon(TypePercentage, "15", "0"),
			subtotal: "99.99",
			want:     "15",
		},
		{
			name:     "fixed",
			coupon:   activeCoupon(TypeFixed, "50", "0"),
			subtotal: "200.00",
			want:     "50",
		},
		{
			name:     "fixed clamped to subtotal",
			coupon:   activeCoupon(TypeFixed, "500", "0"),
			subtotal: "120.00",
			want:     "120",
		},
		{
			name:     "hundred percent equals subtotal",
			coupon:   activeCoupon(TypePercentage, "100", "0"),
			subtotal: "79.50",
			want:     "79.5",
		},
		{
			name:     "subtotal exactly at minimum",
			coupon:   activeCoupon(TypeFixed, "20", "100"),
			subtotal: "100.00",
			want:     "20",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.coupon, decimal.RequireFromString(tt.subtotal), testNow)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestCompute_Expired(t *testing.T) {
	c := activeCoupon(TypePercentage, "10", "0")
	c.ExpiryDate = testNow.Add(-time.Minute)

	_, err := Compute(c, decimal.RequireFromString("100"), testNow)
	require.ErrorIs(t, err, ErrExpired)
}

func TestCompute_ExpiryBoundaryStillValid(t *testing.T) {
	c := activeCoupon(TypePercentage, "10", "0")
	c.ExpiryDate = testNow

	got, err := Compute(c, decimal.RequireFromString("100"), testNow)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(10)))
}

func TestCompute_BelowMinimum(t *testing.T) {
	c := activeCoupon(TypeFixed, "20", "500")

	_, err := Compute(c, decimal.RequireFromString("499.99"), testNow)

	var minErr *BelowMinimumError
	require.ErrorAs(t, err, &minErr)
	assert.True(t, minErr.Min.Equal(decimal.NewFromInt(500)))
	assert.Contains(t, minErr.Error(), "500.00")
}

func TestCompute_UnknownType(t *testing.T) {
	c := activeCoupon(Type("bogo"), "10", "0")

	_, err := Compute(c, decimal.RequireFromString("100"), testNow)
	require.Error(t, err)
}

func TestCompute_DiscountNeverExceedsSubtotal(t *testing.T) {
	// Fixed discounts larger than the subtotal clamp to the subtotal, so the
	// payable amount never goes negative.
	c := activeCoupon(TypeFixed, "1000", "0")
	subtotal := decimal.RequireFromString("42.75")

	got, err := Compute(c, subtotal, testNow)
	require.NoError(t, err)
	assert.True(t, got.Equal(subtotal))
}
