package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRateTable(t *testing.T) {
	rates := DefaultRateTable()

	tests := []struct {
		city string
		want int64
	}{
		{"Dhaka", 70},
		{"dhaka", 70},
		{"  DHAKA  ", 70},
		{"Chittagong", 140},
		{"Sylhet", 140},
		{"", 140},
	}
	for _, tt := range tests {
		got := rates.Rate(tt.city)
		assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "city %q: got %s", tt.city, got)
	}
}
