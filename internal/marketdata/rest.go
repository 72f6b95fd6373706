package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/rampsim/internal/model"
)

// Prices returns the USD price of each CoinGecko id.
func (c *Client) Prices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")

	// {"bitcoin":{"usd":65000.12}}
	var resp map[string]map[string]json.Number
	if err := c.get(ctx, c.pricesURL, query, &resp); err != nil {
		return nil, fmt.Errorf("get prices: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		raw, ok := resp[id]["usd"]
		if !ok {
			return nil, fmt.Errorf("get prices: no usd price for %s", id)
		}
		d, err := decimal.NewFromString(raw.String())
		if err != nil {
			return nil, fmt.Errorf("get prices: parse %s: %w", id, err)
		}
		prices[id] = d
	}
	return prices, nil
}

type ratesResponse struct {
	Result string                 `json:"result"`
	Base   string                 `json:"base_code"`
	Rates  map[string]json.Number `json:"rates"`
}

// Rates returns units of each supported fiat per USD.
func (c *Client) Rates(ctx context.Context) (map[string]decimal.Decimal, error) {
	var resp ratesResponse
	if err := c.get(ctx, c.fxURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("get fx rates: %w", err)
	}
	if resp.Result != "" && resp.Result != "success" {
		return nil, fmt.Errorf("get fx rates: result %q", resp.Result)
	}

	rates := make(map[string]decimal.Decimal, len(model.SupportedFiat))
	for _, code := range model.SupportedFiat {
		raw, ok := resp.Rates[code]
		if !ok {
			return nil, fmt.Errorf("get fx rates: no rate for %s", code)
		}
		d, err := decimal.NewFromString(raw.String())
		if err != nil {
			return nil, fmt.Errorf("get fx rates: parse %s: %w", code, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("get fx rates: non-positive rate for %s", code)
		}
		rates[code] = d
	}
	return rates, nil
}
