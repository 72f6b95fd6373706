package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// TestValuesMatchSchemas checks every record renders one value per schema column.
func TestValuesMatchSchemas(t *testing.T) {
	tests := []struct {
		table  Table
		record Record
	}{
		{TableAccounts, Account{}},
		{TableDeposits, Deposit{}},
		{TableWithdrawals, Withdrawal{}},
		{TableOrders, Order{}},
		{TableExecutions, Execution{}},
		{TableRampTransactions, RampTransaction{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.table), func(t *testing.T) {
			schema, ok := SchemaFor(tt.table)
			if !ok {
				t.Fatalf("SchemaFor(%q) not found", tt.table)
			}
			if got, want := len(tt.record.Values()), len(schema.Columns); got != want {
				t.Errorf("len(Values()) = %d, want %d", got, want)
			}
			if schema.Columns[0].Name != schema.IDColumn {
				t.Errorf("first column = %q, want id column %q", schema.Columns[0].Name, schema.IDColumn)
			}
		})
	}
}

func TestNullableValues(t *testing.T) {
	t.Run("market order has nil limit price", func(t *testing.T) {
		o := Order{OrderID: "o-1", Status: OrderStatusOpen}
		v := o.Values()
		if v[10] != nil {
			t.Errorf("limit_price = %v, want nil", v[10])
		}
	})

	t.Run("limit order renders decimal", func(t *testing.T) {
		price := decimal.RequireFromString("65000.25")
		o := Order{OrderID: "o-1", LimitPrice: &price}
		v := o.Values()
		got, ok := v[10].(decimal.Decimal)
		if !ok {
			t.Fatalf("limit_price type = %T, want decimal.Decimal", v[10])
		}
		if !got.Equal(price) {
			t.Errorf("limit_price = %s, want %s", got, price)
		}
	})

	t.Run("fiat deposit has nil confirmations", func(t *testing.T) {
		d := Deposit{DepositID: "d-1", DepositType: "fiat"}
		if v := d.Values()[8]; v != nil {
			t.Errorf("blockchain_confirmations = %v, want nil", v)
		}
	})

	t.Run("crypto withdrawal renders tx hash", func(t *testing.T) {
		hash := "abc123"
		w := Withdrawal{WithdrawalID: "w-1", TxHash: &hash}
		if v := w.Values()[8]; v != "abc123" {
			t.Errorf("tx_hash = %v, want %q", v, hash)
		}
	})
}

func TestIsFillable(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{OrderStatusFilled, true},
		{OrderStatusPartiallyFilled, true},
		{OrderStatusOpen, false},
		{OrderStatusCancelled, false},
		{OrderStatusExpired, false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsFillable(tt.status); got != tt.want {
			t.Errorf("IsFillable(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRows(t *testing.T) {
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	accounts := []Account{
		{AccountID: "a-1", CreatedAt: ts},
		{AccountID: "a-2", CreatedAt: ts},
	}

	rows := Rows(accounts)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[1][0] != "a-2" {
		t.Errorf("rows[1][0] = %v, want %q", rows[1][0], "a-2")
	}
}

func TestQuotesRate(t *testing.T) {
	q := Quotes{FXRates: map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.92"),
		"XXX": decimal.Zero,
	}}

	if got := q.Rate("EUR"); !got.Equal(decimal.RequireFromString("0.92")) {
		t.Errorf("Rate(EUR) = %s, want 0.92", got)
	}
	if got := q.Rate("XXX"); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Rate(XXX) = %s, want 1", got)
	}
	if got := q.Rate("JPY"); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Rate(JPY) = %s, want 1", got)
	}
}

func TestMustSchemaPanicsOnUnknownTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustSchema(unknown) did not panic")
		}
	}()
	MustSchema(Table("nope"))
}
