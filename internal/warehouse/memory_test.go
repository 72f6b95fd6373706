package warehouse

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/rampsim/internal/model"
)

func ordersFixture(t *testing.T) *Memory {
	t.Helper()
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.EnsureTable(ctx, model.MustSchema(model.TableOrders)))

	cols := []string{"order_id", "account_id", "status", "limit_price"}
	rows := [][]any{
		{"o-1", "a-1", model.OrderStatusFilled, decimal.RequireFromString("101.5")},
		{"o-2", "a-1", model.OrderStatusOpen, nil},
		{"o-3", "a-2", model.OrderStatusPartiallyFilled, nil},
	}
	require.NoError(t, m.AppendRows(ctx, model.TableOrders, cols, rows))
	return m
}

func TestMemory_SelectKeys(t *testing.T) {
	m := ordersFixture(t)

	got, err := m.SelectKeys(context.Background(), model.TableOrders,
		[]string{"order_id", "limit_price"}, Filter{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"o-1", "101.5"}, {"o-2", ""}, {"o-3", ""}}, got)
}

func TestMemory_SelectKeys_Filter(t *testing.T) {
	m := ordersFixture(t)

	got, err := m.SelectKeys(context.Background(), model.TableOrders,
		[]string{"order_id"}, Filter{Column: "status", In: model.FillableStatuses})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"o-1"}, {"o-3"}}, got)
}

func TestMemory_MissingTable(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.SelectKeys(ctx, model.TableAccounts, []string{"account_id"}, Filter{})
	assert.ErrorIs(t, err, ErrTableNotFound)

	err = m.AppendRows(ctx, model.TableAccounts, []string{"account_id"}, [][]any{{"a"}})
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = m.Stats(ctx, model.TableAccounts, "account_id")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestMemory_UnknownColumn(t *testing.T) {
	m := ordersFixture(t)
	err := m.AppendRows(context.Background(), model.TableOrders, []string{"nope"}, [][]any{{"x"}})
	assert.Error(t, err)
	assert.Equal(t, 3, m.RowCount(model.TableOrders))
}

func TestMemory_FailAppend(t *testing.T) {
	m := ordersFixture(t)
	boom := errors.New("disk full")
	m.FailAppend(model.TableOrders, boom)

	err := m.AppendRows(context.Background(), model.TableOrders, []string{"order_id"}, [][]any{{"o-4"}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, m.RowCount(model.TableOrders))
	assert.Equal(t, 2, m.AppendCalls(model.TableOrders))

	m.FailAppend(model.TableOrders, nil)
	require.NoError(t, m.AppendRows(context.Background(), model.TableOrders, []string{"order_id"}, [][]any{{"o-4"}}))
	assert.Equal(t, 4, m.RowCount(model.TableOrders))
}

func TestMemory_FailAppendAfter(t *testing.T) {
	m := ordersFixture(t)
	boom := errors.New("connection reset")
	m.FailAppendAfter(model.TableOrders, 1, boom)

	err := m.AppendRows(context.Background(), model.TableOrders, []string{"order_id"},
		[][]any{{"o-4"}, {"o-5"}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, m.RowCount(model.TableOrders))
	assert.Equal(t, []any{"o-1", "o-2", "o-3", "o-4"}, m.Column(model.TableOrders, "order_id"))
}

func TestMemory_Stats(t *testing.T) {
	m := ordersFixture(t)
	ctx := context.Background()

	s, err := m.Stats(ctx, model.TableOrders, "order_id")
	require.NoError(t, err)
	assert.Equal(t, TableStats{Rows: 3, DistinctIDs: 3}, s)
	assert.Zero(t, s.Duplicates())

	require.NoError(t, m.AppendRows(ctx, model.TableOrders, []string{"order_id"}, [][]any{{"o-1"}}))
	s, err = m.Stats(ctx, model.TableOrders, "order_id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Duplicates())
}

func TestMemory_FailSelect(t *testing.T) {
	m := ordersFixture(t)
	boom := errors.New("timeout")
	m.FailSelect(model.TableOrders, boom)

	_, err := m.SelectKeys(context.Background(), model.TableOrders, []string{"order_id"}, Filter{})
	assert.ErrorIs(t, err, boom)
}
