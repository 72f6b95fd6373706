package warehouse

import (
	"context"
	"errors"

	"github.com/rickgao/rampsim/internal/model"
)

// Errors
var (
	ErrTableNotFound = errors.New("table not found")
	ErrNotConfirmed  = errors.New("append not confirmed")
)

// Sink appends rows to named tables.
type Sink interface {
	// EnsureTable creates the table from its schema if it does not exist.
	EnsureTable(ctx context.Context, schema model.Schema) error

	// AppendRows inserts rows positionally matching columns. It returns only
	// after the warehouse has acknowledged every row.
	AppendRows(ctx context.Context, table model.Table, columns []string, rows [][]any) error
}

// Reader reads back persisted values.
type Reader interface {
	// SelectKeys returns the requested columns rendered as strings (NULL as "")
	// for rows matching filter. A missing table yields ErrTableNotFound.
	SelectKeys(ctx context.Context, table model.Table, columns []string, filter Filter) ([][]string, error)
}

// Inspector reports table health for operators.
type Inspector interface {
	Stats(ctx context.Context, table model.Table, idColumn string) (TableStats, error)
}

// Warehouse is a full warehouse connection.
type Warehouse interface {
	Sink
	Reader
	Inspector
	Close() error
}

// Filter restricts SelectKeys to rows whose Column is one of In.
// The zero Filter matches every row.
type Filter struct {
	Column string
	In     []string
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return f.Column == ""
}

// TableStats summarizes a table. Rows greater than DistinctIDs means a batch
// was appended more than once.
type TableStats struct {
	Rows        int64
	DistinctIDs int64
}

// Duplicates returns the number of surplus rows sharing an id.
func (s TableStats) Duplicates() int64 {
	return s.Rows - s.DistinctIDs
}
