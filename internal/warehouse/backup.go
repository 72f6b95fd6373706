package warehouse

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rickgao/rampsim/internal/model"
)

// CSVBackup writes a raw CSV copy of every acknowledged append to
// <dir>/<table>/<stamp>_<rows>.csv. Backup failures are logged and never
// fail the append.
type CSVBackup struct {
	Warehouse
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// WithCSVBackup decorates w. An empty dir returns w unchanged.
func WithCSVBackup(w Warehouse, dir string, logger *slog.Logger) Warehouse {
	if dir == "" {
		return w
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVBackup{
		Warehouse: w,
		dir:       dir,
		logger:    logger,
		now:       time.Now,
	}
}

// AppendRows appends to the wrapped warehouse, then backs the batch up.
func (b *CSVBackup) AppendRows(ctx context.Context, table model.Table, columns []string, rows [][]any) error {
	if err := b.Warehouse.AppendRows(ctx, table, columns, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	path, err := b.write(table, columns, rows)
	if err != nil {
		b.logger.Warn("csv backup failed", "table", table, "rows", len(rows), "error", err)
		return nil
	}
	b.logger.Debug("csv backup written", "table", table, "path", path)
	return nil
}

func (b *CSVBackup) write(table model.Table, columns []string, rows [][]any) (string, error) {
	dir := filepath.Join(b.dir, string(table))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("%s_%d.csv", b.now().UTC().Format("20060102T150405.000000000Z"), len(rows))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, f.Close()
}
