package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rickgao/rampsim/internal/model"
)

// SQLSTATE undefined_table.
const pgUndefinedTable = "42P01"

// Postgres appends rows to a Postgres or TimescaleDB database with COPY.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
	logger *slog.Logger
}

// NewPostgres wraps an open pool. Tables are created in dbSchema.
func NewPostgres(pool *pgxpool.Pool, dbSchema string, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	if dbSchema == "" {
		dbSchema = "public"
	}
	return &Postgres{
		pool:   pool,
		schema: dbSchema,
		logger: logger,
	}
}

// EnsureTable creates the schema and table if missing.
func (p *Postgres) EnsureTable(ctx context.Context, s model.Schema) error {
	if _, err := p.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{p.schema}.Sanitize()); err != nil {
		return fmt.Errorf("create schema %s: %w", p.schema, err)
	}
	if _, err := p.pool.Exec(ctx, postgresCreateTable(p.schema, s)); err != nil {
		return fmt.Errorf("create table %s: %w", s.Table, err)
	}
	return nil
}

// AppendRows bulk-loads rows with COPY FROM. The copy is a single statement,
// so either every row lands or none do.
func (p *Postgres) AppendRows(ctx context.Context, table model.Table, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	src := make([][]any, len(rows))
	for i, row := range rows {
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = toPostgresValue(v)
		}
		src[i] = out
	}

	n, err := p.pool.CopyFrom(ctx, p.ident(table), columns, pgx.CopyFromRows(src))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, mapPostgresError(err))
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copy into %s: %w: copied %d of %d rows", table, ErrNotConfirmed, n, len(rows))
	}

	p.logger.Debug("copied rows", "table", table, "rows", n)
	return nil
}

// SelectKeys reads columns cast to text. NULL becomes "".
func (p *Postgres) SelectKeys(ctx context.Context, table model.Table, columns []string, filter Filter) ([][]string, error) {
	exprs := make([]string, len(columns))
	for i, c := range columns {
		exprs[i] = "COALESCE(" + pgx.Identifier{c}.Sanitize() + "::text, '')"
	}
	query := "SELECT " + strings.Join(exprs, ", ") + " FROM " + p.ident(table).Sanitize()

	var args []any
	if !filter.IsZero() {
		query += " WHERE " + pgx.Identifier{filter.Column}.Sanitize() + "::text = ANY($1)"
		args = append(args, filter.In)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select keys from %s: %w", table, mapPostgresError(err))
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]string, error) {
		vals := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range vals {
			dest[i] = &vals[i]
		}
		err := row.Scan(dest...)
		return vals, err
	})
	if err != nil {
		return nil, fmt.Errorf("select keys from %s: %w", table, mapPostgresError(err))
	}
	return out, nil
}

// Stats counts rows and distinct ids.
func (p *Postgres) Stats(ctx context.Context, table model.Table, idColumn string) (TableStats, error) {
	query := fmt.Sprintf("SELECT count(*), count(DISTINCT %s) FROM %s",
		pgx.Identifier{idColumn}.Sanitize(), p.ident(table).Sanitize())

	var s TableStats
	if err := p.pool.QueryRow(ctx, query).Scan(&s.Rows, &s.DistinctIDs); err != nil {
		return TableStats{}, fmt.Errorf("stats for %s: %w", table, mapPostgresError(err))
	}
	return s, nil
}

// Close closes the underlying pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) ident(table model.Table) pgx.Identifier {
	return pgx.Identifier{p.schema, string(table)}
}

// toPostgresValue converts values pgx cannot encode directly.
func toPostgresValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return pgtype.Numeric{Int: x.Coefficient(), Exp: x.Exponent(), Valid: true}
	default:
		return v
	}
}

func mapPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%w: %s", ErrTableNotFound, pgErr.Message)
	}
	return err
}
