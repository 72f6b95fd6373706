package refkeys

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/rampsim/internal/model"
	"github.com/rickgao/rampsim/internal/warehouse"
)

func seedOrders(t *testing.T, m *warehouse.Memory, orders ...model.Order) {
	t.Helper()
	ctx := context.Background()
	schema := model.MustSchema(model.TableOrders)
	require.NoError(t, m.EnsureTable(ctx, schema))
	require.NoError(t, m.AppendRows(ctx, model.TableOrders, schema.ColumnNames(), model.Rows(orders)))
}

func order(id, account, status string, limit *decimal.Decimal) model.Order {
	ts := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	return model.Order{
		OrderID:       id,
		AccountID:     account,
		Timestamp:     ts,
		TradingPair:   "bitcoin/USD",
		Side:          "buy",
		OrderType:     "limit",
		BaseCurrency:  "bitcoin",
		QuoteCurrency: "USD",
		BaseAmount:    decimal.RequireFromString("0.5"),
		FilledAmount:  decimal.RequireFromString("0.25"),
		LimitPrice:    limit,
		Status:        status,
		CreatedAt:     ts,
	}
}

func TestAccountIDs(t *testing.T) {
	ctx := context.Background()
	m := warehouse.NewMemory()
	schema := model.MustSchema(model.TableAccounts)
	require.NoError(t, m.EnsureTable(ctx, schema))
	require.NoError(t, m.AppendRows(ctx, model.TableAccounts, []string{"account_id"}, [][]any{{"a-1"}, {"a-2"}}))

	ids, err := New(m).AccountIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1", "a-2"}, ids)
}

func TestAccountIDs_EmptyTable(t *testing.T) {
	ctx := context.Background()
	m := warehouse.NewMemory()
	require.NoError(t, m.EnsureTable(ctx, model.MustSchema(model.TableAccounts)))

	ids, err := New(m).AccountIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAccountIDs_MissingTable(t *testing.T) {
	_, err := New(warehouse.NewMemory()).AccountIDs(context.Background())
	assert.ErrorIs(t, err, warehouse.ErrTableNotFound)
}

func TestKeys_UnknownTable(t *testing.T) {
	_, err := New(warehouse.NewMemory()).Keys(context.Background(), model.Table("nope"))
	assert.Error(t, err)
}

func TestFillableOrders(t *testing.T) {
	m := warehouse.NewMemory()
	limit := decimal.RequireFromString("64000.5")
	seedOrders(t, m,
		order("o-1", "a-1", model.OrderStatusFilled, &limit),
		order("o-2", "a-1", model.OrderStatusOpen, nil),
		order("o-3", "a-2", model.OrderStatusPartiallyFilled, nil),
		order("o-4", "a-2", model.OrderStatusCancelled, nil),
		order("o-5", "a-3", model.OrderStatusExpired, nil),
	)

	refs, err := New(m).FillableOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "o-1", refs[0].OrderID)
	assert.Equal(t, "a-1", refs[0].AccountID)
	require.NotNil(t, refs[0].LimitPrice)
	assert.True(t, refs[0].LimitPrice.Equal(limit))
	assert.True(t, refs[0].FilledAmount.Equal(decimal.RequireFromString("0.25")))
	assert.True(t, refs[0].Timestamp.Equal(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)))

	assert.Equal(t, "o-3", refs[1].OrderID)
	assert.Nil(t, refs[1].LimitPrice)
	for _, r := range refs {
		assert.True(t, model.IsFillable(r.Status), "order %s has status %s", r.OrderID, r.Status)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2026-09-01T12:00:00Z",
		"2026-09-01 12:00:00+00",
		"2026-09-01 14:00:00+02:00",
		"2026-09-01 12:00:00.000000",
	} {
		got, err := parseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "parseTimestamp(%q) = %v", in, got)
	}

	_, err := parseTimestamp("yesterday")
	assert.Error(t, err)
}
