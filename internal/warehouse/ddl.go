package warehouse

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/rampsim/internal/model"
)

// postgresType maps a logical column type to Postgres DDL.
func postgresType(t model.ColumnType) string {
	switch t {
	case model.TypeInt:
		return "BIGINT"
	case model.TypeDecimal:
		return "NUMERIC(38, 8)"
	case model.TypeBool:
		return "BOOLEAN"
	case model.TypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// clickhouseType maps a logical column type to ClickHouse DDL.
func clickhouseType(c model.Column) string {
	var t string
	switch c.Type {
	case model.TypeInt:
		t = "Int64"
	case model.TypeDecimal:
		t = "Decimal(38, 8)"
	case model.TypeBool:
		t = "Bool"
	case model.TypeTimestamp:
		t = "DateTime64(6, 'UTC')"
	default:
		t = "String"
	}
	if c.Nullable {
		return "Nullable(" + t + ")"
	}
	return t
}

// postgresCreateTable renders CREATE TABLE IF NOT EXISTS for a schema.
// No primary key is declared: appends are never rejected, duplicates are
// reported through Stats instead.
func postgresCreateTable(dbSchema string, s model.Schema) string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		def := pgx.Identifier{c.Name}.Sanitize() + " " + postgresType(c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols[i] = def
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		pgx.Identifier{dbSchema, string(s.Table)}.Sanitize(),
		strings.Join(cols, ",\n\t"),
	)
}

// clickhouseCreateTable renders a MergeTree table ordered by the id column.
func clickhouseCreateTable(database string, s model.Schema) string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = quoteCH(c.Name) + " " + clickhouseType(c)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) ENGINE = MergeTree ORDER BY %s",
		qualifyCH(database, string(s.Table)),
		strings.Join(cols, ",\n\t"),
		quoteCH(s.IDColumn),
	)
}

func quoteCH(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

func qualifyCH(database, table string) string {
	if database == "" {
		return quoteCH(table)
	}
	return quoteCH(database) + "." + quoteCH(table)
}
