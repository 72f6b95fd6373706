package marketdata

import (
	"maps"

	"github.com/shopspring/decimal"
)

// Static quotes used when a live source is unavailable.
var (
	fallbackPrices = map[string]decimal.Decimal{
		"bitcoin":  decimal.NewFromInt(65000),
		"ethereum": decimal.NewFromInt(3500),
		"solana":   decimal.NewFromInt(140),
		"tether":   decimal.NewFromInt(1),
	}
	fallbackRates = map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("0.79"),
		"CAD": decimal.RequireFromString("1.35"),
	}
)

// FallbackPrices returns a copy of the static USD price table.
func FallbackPrices() map[string]decimal.Decimal {
	return maps.Clone(fallbackPrices)
}

// FallbackRates returns a copy of the static FX table.
func FallbackRates() map[string]decimal.Decimal {
	return maps.Clone(fallbackRates)
}
