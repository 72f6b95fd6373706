package warehouse

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rickgao/rampsim/internal/model"
)

type memTable struct {
	columns []string
	rows    [][]any
}

// Memory is an in-process warehouse. It is safe for concurrent use.
//
// Failures can be injected per table to exercise error paths: FailAppend
// rejects the whole batch, FailAppendAfter lands a prefix then fails.
type Memory struct {
	mu      sync.Mutex
	tables  map[model.Table]*memTable
	appends map[model.Table]int

	appendErr   map[model.Table]error
	partialRows map[model.Table]int
	selectErr   map[model.Table]error
}

// NewMemory creates an empty warehouse.
func NewMemory() *Memory {
	return &Memory{
		tables:      make(map[model.Table]*memTable),
		appends:     make(map[model.Table]int),
		appendErr:   make(map[model.Table]error),
		partialRows: make(map[model.Table]int),
		selectErr:   make(map[model.Table]error),
	}
}

// FailAppend makes every append to table return err. A nil err clears it.
func (m *Memory) FailAppend(table model.Table, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendErr[table] = err
	delete(m.partialRows, table)
}

// FailAppendAfter makes appends to table store the first n rows, then return err.
func (m *Memory) FailAppendAfter(table model.Table, n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendErr[table] = err
	m.partialRows[table] = n
}

// FailSelect makes reads of table return err. A nil err clears it.
func (m *Memory) FailSelect(table model.Table, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectErr[table] = err
}

// EnsureTable creates the table if missing.
func (m *Memory) EnsureTable(_ context.Context, s model.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[s.Table]; !ok {
		m.tables[s.Table] = &memTable{columns: s.ColumnNames()}
	}
	return nil
}

// AppendRows stores rows in table order. The table must exist.
func (m *Memory) AppendRows(_ context.Context, table model.Table, columns []string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("append to %s: %w", table, ErrTableNotFound)
	}
	idx, err := t.indexes(columns)
	if err != nil {
		return fmt.Errorf("append to %s: %w", table, err)
	}

	m.appends[table]++
	limit := len(rows)
	failErr := m.appendErr[table]
	if failErr != nil {
		limit = 0
		if n, ok := m.partialRows[table]; ok {
			limit = min(n, len(rows))
		}
	}

	for _, row := range rows[:limit] {
		stored := make([]any, len(t.columns))
		for i, pos := range idx {
			stored[pos] = row[i]
		}
		t.rows = append(t.rows, stored)
	}
	if failErr != nil {
		return fmt.Errorf("append to %s: %w", table, failErr)
	}
	return nil
}

// SelectKeys returns the requested columns formatted as strings.
func (m *Memory) SelectKeys(_ context.Context, table model.Table, columns []string, filter Filter) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.selectErr[table]; err != nil {
		return nil, fmt.Errorf("select keys from %s: %w", table, err)
	}
	t, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("select keys from %s: %w", table, ErrTableNotFound)
	}
	idx, err := t.indexes(columns)
	if err != nil {
		return nil, fmt.Errorf("select keys from %s: %w", table, err)
	}
	filterIdx := -1
	if !filter.IsZero() {
		filterIdx = slices.Index(t.columns, filter.Column)
		if filterIdx < 0 {
			return nil, fmt.Errorf("select keys from %s: unknown column %q", table, filter.Column)
		}
	}

	var out [][]string
	for _, row := range t.rows {
		if filterIdx >= 0 && !slices.Contains(filter.In, formatValue(row[filterIdx])) {
			continue
		}
		vals := make([]string, len(idx))
		for i, pos := range idx {
			vals[i] = formatValue(row[pos])
		}
		out = append(out, vals)
	}
	return out, nil
}

// Stats counts rows and distinct ids.
func (m *Memory) Stats(_ context.Context, table model.Table, idColumn string) (TableStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return TableStats{}, fmt.Errorf("stats for %s: %w", table, ErrTableNotFound)
	}
	pos := slices.Index(t.columns, idColumn)
	if pos < 0 {
		return TableStats{}, fmt.Errorf("stats for %s: unknown column %q", table, idColumn)
	}
	seen := make(map[string]struct{}, len(t.rows))
	for _, row := range t.rows {
		seen[formatValue(row[pos])] = struct{}{}
	}
	return TableStats{Rows: int64(len(t.rows)), DistinctIDs: int64(len(seen))}, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// RowCount returns the number of rows stored in table.
func (m *Memory) RowCount(table model.Table) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[table]; ok {
		return len(t.rows)
	}
	return 0
}

// AppendCalls returns how many times AppendRows was called for table.
func (m *Memory) AppendCalls(table model.Table) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appends[table]
}

// Column returns every stored value of one column.
func (m *Memory) Column(table model.Table, name string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return nil
	}
	pos := slices.Index(t.columns, name)
	if pos < 0 {
		return nil
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[pos]
	}
	return out
}

func (t *memTable) indexes(columns []string) ([]int, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		pos := slices.Index(t.columns, c)
		if pos < 0 {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		idx[i] = pos
	}
	return idx, nil
}
