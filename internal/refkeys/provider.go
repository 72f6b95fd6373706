package refkeys

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/rampsim/internal/model"
	"github.com/rickgao/rampsim/internal/warehouse"
)

// orderRefColumns is the projection FillableOrders reads, in scan order.
var orderRefColumns = []string{
	"order_id",
	"account_id",
	"timestamp",
	"trading_pair",
	"side",
	"order_type",
	"base_currency",
	"quote_currency",
	"filled_amount",
	"limit_price",
	"status",
}

// Provider looks up reference keys in the warehouse.
type Provider struct {
	reader warehouse.Reader
}

// New creates a Provider over reader.
func New(reader warehouse.Reader) *Provider {
	return &Provider{reader: reader}
}

// AccountIDs returns every persisted account id.
func (p *Provider) AccountIDs(ctx context.Context) ([]string, error) {
	return p.Keys(ctx, model.TableAccounts)
}

// Keys returns the id column of any known table.
func (p *Provider) Keys(ctx context.Context, table model.Table) ([]string, error) {
	schema, ok := model.SchemaFor(table)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	rows, err := p.reader.SelectKeys(ctx, table, []string{schema.IDColumn}, warehouse.Filter{})
	if err != nil {
		return nil, fmt.Errorf("read %s keys: %w", table, err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r[0])
	}
	return ids, nil
}

// FillableOrders returns persisted orders in a fillable status.
func (p *Provider) FillableOrders(ctx context.Context) ([]model.OrderRef, error) {
	rows, err := p.reader.SelectKeys(ctx, model.TableOrders, orderRefColumns, warehouse.Filter{
		Column: "status",
		In:     model.FillableStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("read fillable orders: %w", err)
	}

	refs := make([]model.OrderRef, 0, len(rows))
	for _, r := range rows {
		ref, err := parseOrderRef(r)
		if err != nil {
			return nil, fmt.Errorf("parse order %s: %w", r[0], err)
		}
		// Guard against sinks that ignore the filter.
		if !model.IsFillable(ref.Status) {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseOrderRef(r []string) (model.OrderRef, error) {
	ts, err := parseTimestamp(r[2])
	if err != nil {
		return model.OrderRef{}, fmt.Errorf("timestamp: %w", err)
	}
	filled, err := decimal.NewFromString(r[8])
	if err != nil {
		return model.OrderRef{}, fmt.Errorf("filled_amount: %w", err)
	}
	var limit *decimal.Decimal
	if r[9] != "" {
		d, err := decimal.NewFromString(r[9])
		if err != nil {
			return model.OrderRef{}, fmt.Errorf("limit_price: %w", err)
		}
		limit = &d
	}
	return model.OrderRef{
		OrderID:       r[0],
		AccountID:     r[1],
		Timestamp:     ts,
		TradingPair:   r[3],
		Side:          r[4],
		OrderType:     r[5],
		BaseCurrency:  r[6],
		QuoteCurrency: r[7],
		FilledAmount:  filled,
		LimitPrice:    limit,
		Status:        r[10],
	}, nil
}

// Text renderings of a timestamp differ per sink.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
