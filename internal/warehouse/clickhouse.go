package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/rickgao/rampsim/internal/config"
	"github.com/rickgao/rampsim/internal/model"
)

// ClickHouse error code UNKNOWN_TABLE.
const chUnknownTable = 60

// ClickHouse appends rows to MergeTree tables with batched inserts.
type ClickHouse struct {
	conn     driver.Conn
	database string
	logger   *slog.Logger
}

// OpenClickHouse connects and pings the server.
func OpenClickHouse(ctx context.Context, cfg config.ClickHouseConfig, logger *slog.Logger) (*ClickHouse, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.Addr,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping clickhouse %s: %w", strings.Join(cfg.Addr, ","), err)
	}
	return NewClickHouse(conn, cfg.Database, logger), nil
}

// NewClickHouse wraps an open connection.
func NewClickHouse(conn driver.Conn, database string, logger *slog.Logger) *ClickHouse {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClickHouse{
		conn:     conn,
		database: database,
		logger:   logger,
	}
}

// EnsureTable creates the table if missing.
func (c *ClickHouse) EnsureTable(ctx context.Context, s model.Schema) error {
	if err := c.conn.Exec(ctx, clickhouseCreateTable(c.database, s)); err != nil {
		return fmt.Errorf("create table %s: %w", s.Table, err)
	}
	return nil
}

// AppendRows inserts rows as one batch. Send is the acknowledgement.
func (c *ClickHouse) AppendRows(ctx context.Context, table model.Table, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteCH(col)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s)", qualifyCH(c.database, string(table)), strings.Join(quoted, ", "))

	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare batch for %s: %w", table, mapClickHouseError(err))
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			return fmt.Errorf("append to %s batch: %w", table, err)
		}
	}
	if n := batch.Rows(); n != len(rows) {
		return fmt.Errorf("insert into %s: %w: batched %d of %d rows", table, ErrNotConfirmed, n, len(rows))
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert into %s: %w", table, mapClickHouseError(err))
	}

	c.logger.Debug("inserted rows", "table", table, "rows", len(rows))
	return nil
}

// SelectKeys reads columns converted to String. NULL becomes "".
func (c *ClickHouse) SelectKeys(ctx context.Context, table model.Table, columns []string, filter Filter) ([][]string, error) {
	exprs := make([]string, len(columns))
	for i, col := range columns {
		exprs[i] = "ifNull(toString(" + quoteCH(col) + "), '')"
	}
	query := "SELECT " + strings.Join(exprs, ", ") + " FROM " + qualifyCH(c.database, string(table))

	var args []any
	if !filter.IsZero() {
		query += " WHERE has(?, toString(" + quoteCH(filter.Column) + "))"
		args = append(args, filter.In)
	}

	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select keys from %s: %w", table, mapClickHouseError(err))
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		vals := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select keys from %s: %w", table, mapClickHouseError(err))
	}
	return out, nil
}

// Stats counts rows and distinct ids.
func (c *ClickHouse) Stats(ctx context.Context, table model.Table, idColumn string) (TableStats, error) {
	query := fmt.Sprintf("SELECT count(), uniqExact(%s) FROM %s", quoteCH(idColumn), qualifyCH(c.database, string(table)))

	var rows, distinct uint64
	if err := c.conn.QueryRow(ctx, query).Scan(&rows, &distinct); err != nil {
		return TableStats{}, fmt.Errorf("stats for %s: %w", table, mapClickHouseError(err))
	}
	return TableStats{Rows: int64(rows), DistinctIDs: int64(distinct)}, nil
}

// Close closes the connection.
func (c *ClickHouse) Close() error {
	return c.conn.Close()
}

func mapClickHouseError(err error) error {
	var exc *clickhouse.Exception
	if errors.As(err, &exc) && exc.Code == chUnknownTable {
		return fmt.Errorf("%w: %s", ErrTableNotFound, exc.Message)
	}
	return err
}
