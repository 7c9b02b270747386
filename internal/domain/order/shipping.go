package order

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateTable resolves a flat shipping rate from the destination city.
// Cities are matched case-insensitively; unlisted cities pay Default.
type RateTable struct {
	Cities  map[string]decimal.Decimal
	Default decimal.Decimal
}

// DefaultRateTable returns the domestic rate table: Dhaka 70, everywhere
// else 140, in the storefront's base currency.
func DefaultRateTable() RateTable {
	return RateTable{
		Cities: map[string]decimal.Decimal{
			"dhaka": decimal.NewFromInt(70),
		},
		Default: decimal.NewFromInt(140),
	}
}

// Rate returns the shipping price for the given city.
func (t RateTable) Rate(city string) decimal.Decimal {
	if rate, ok := t.Cities[strings.ToLower(strings.TrimSpace(city))]; ok {
		return rate
	}
	return t.Default
}
