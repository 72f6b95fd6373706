package model

import "github.com/shopspring/decimal"

// Supported assets and rails.
var (
	SupportedFiat   = []string{"USD", "EUR", "GBP", "CAD"}
	SupportedCrypto = []string{"bitcoin", "ethereum", "solana", "tether"}
	PaymentMethods  = []string{"credit_card", "debit_card", "ach_transfer", "sepa", "apple_pay"}
)

// Quotes is the market data snapshot a run generates against.
type Quotes struct {
	// Prices maps crypto id to USD price.
	Prices map[string]decimal.Decimal

	// FXRates maps fiat code to units per USD (EUR 0.92 means 1 USD = 0.92 EUR).
	FXRates map[string]decimal.Decimal

	// Fallback is true when the snapshot did not come from a live source.
	Fallback bool
}

// Price returns the USD price of a crypto asset, or zero if unknown.
func (q Quotes) Price(asset string) decimal.Decimal {
	return q.Prices[asset]
}

// Rate returns units of fiat per USD, defaulting to 1 when unknown.
func (q Quotes) Rate(fiat string) decimal.Decimal {
	if r, ok := q.FXRates[fiat]; ok && r.IsPositive() {
		return r
	}
	return decimal.NewFromInt(1)
}
