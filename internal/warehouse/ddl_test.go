package warehouse

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/rickgao/rampsim/internal/model"
)

func TestPostgresCreateTable(t *testing.T) {
	ddl := postgresCreateTable("raw", model.MustSchema(model.TableDeposits))

	wants := []string{
		`CREATE TABLE IF NOT EXISTS "raw"."deposits"`,
		`"deposit_id" TEXT NOT NULL`,
		`"amount" NUMERIC(38, 8) NOT NULL`,
		`"timestamp" TIMESTAMPTZ NOT NULL`,
	}
	for _, want := range wants {
		if !strings.Contains(ddl, want) {
			t.Errorf("ddl missing %q:\n%s", want, ddl)
		}
	}
	if strings.Contains(ddl, `"blockchain_confirmations" BIGINT NOT NULL`) {
		t.Errorf("nullable column declared NOT NULL:\n%s", ddl)
	}
	if strings.Contains(ddl, "PRIMARY KEY") {
		t.Errorf("ddl declares a primary key:\n%s", ddl)
	}
}

func TestClickHouseCreateTable(t *testing.T) {
	ddl := clickhouseCreateTable("ramp", model.MustSchema(model.TableOrders))

	wants := []string{
		"CREATE TABLE IF NOT EXISTS `ramp`.`orders`",
		"`limit_price` Nullable(Decimal(38, 8))",
		"`base_amount` Decimal(38, 8)",
		"`created_at` DateTime64(6, 'UTC')",
		"ENGINE = MergeTree ORDER BY `order_id`",
	}
	for _, want := range wants {
		if !strings.Contains(ddl, want) {
			t.Errorf("ddl missing %q:\n%s", want, ddl)
		}
	}
}

func TestQualifyCH(t *testing.T) {
	if got := qualifyCH("", "trades"); got != "`trades`" {
		t.Errorf("qualifyCH() = %q, want %q", got, "`trades`")
	}
	if got := qualifyCH("db", "trades"); got != "`db`.`trades`" {
		t.Errorf("qualifyCH() = %q, want %q", got, "`db`.`trades`")
	}
}

func TestToPostgresValue(t *testing.T) {
	got := toPostgresValue(decimal.RequireFromString("12.345"))
	num, ok := got.(pgtype.Numeric)
	if !ok {
		t.Fatalf("toPostgresValue() type = %T, want pgtype.Numeric", got)
	}
	if num.Int.Int64() != 12345 || num.Exp != -3 || !num.Valid {
		t.Errorf("toPostgresValue() = %+v, want 12345e-3", num)
	}

	if got := toPostgresValue("x"); got != "x" {
		t.Errorf("toPostgresValue(string) = %v, want x", got)
	}
	if got := toPostgresValue(nil); got != nil {
		t.Errorf("toPostgresValue(nil) = %v, want nil", got)
	}
}

func TestMapPostgresError(t *testing.T) {
	err := mapPostgresError(fmt.Errorf("copy: %w", &pgconn.PgError{Code: "42P01", Message: `relation "x" does not exist`}))
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("mapPostgresError(42P01) = %v, want ErrTableNotFound", err)
	}

	other := &pgconn.PgError{Code: "23505"}
	if got := mapPostgresError(other); errors.Is(got, ErrTableNotFound) {
		t.Errorf("mapPostgresError(23505) = %v, want passthrough", got)
	}
}

func TestMapClickHouseError(t *testing.T) {
	err := mapClickHouseError(&clickhouse.Exception{Code: 60, Message: "Table ramp.x does not exist"})
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("mapClickHouseError(60) = %v, want ErrTableNotFound", err)
	}

	if got := mapClickHouseError(&clickhouse.Exception{Code: 241}); errors.Is(got, ErrTableNotFound) {
		t.Errorf("mapClickHouseError(241) = %v, want passthrough", got)
	}
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{decimal.RequireFromString("0.00012345"), "0.00012345"},
		{ts, "2026-10-16T08:30:00Z"},
		{true, "true"},
		{int64(12), "12"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
