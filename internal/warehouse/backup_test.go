package warehouse

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/rampsim/internal/model"
)

func TestWithCSVBackup_Disabled(t *testing.T) {
	m := NewMemory()
	assert.Same(t, m, WithCSVBackup(m, "", nil).(*Memory))
}

func TestCSVBackup_WritesBatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewMemory()
	w := WithCSVBackup(m, dir, nil)
	w.(*CSVBackup).now = func() time.Time { return time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC) }

	require.NoError(t, w.EnsureTable(ctx, model.MustSchema(model.TableAccounts)))
	cols := []string{"account_id", "is_active"}
	require.NoError(t, w.AppendRows(ctx, model.TableAccounts, cols, [][]any{{"a-1", true}, {"a-2", false}}))

	assert.Equal(t, 2, m.RowCount(model.TableAccounts))

	path := filepath.Join(dir, "accounts", "20261017T060000.000000000Z_2.csv")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"account_id", "is_active"}, {"a-1", "true"}, {"a-2", "false"}}, records)
}

func TestCSVBackup_SkipsFailedAppend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewMemory()
	w := WithCSVBackup(m, dir, nil)

	require.NoError(t, w.EnsureTable(ctx, model.MustSchema(model.TableAccounts)))
	boom := errors.New("rejected")
	m.FailAppend(model.TableAccounts, boom)

	err := w.AppendRows(ctx, model.TableAccounts, []string{"account_id"}, [][]any{{"a-1"}})
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(filepath.Join(dir, "accounts"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCSVBackup_FailureNotPropagated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// A regular file where the table directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts"), []byte("x"), 0o644))

	m := NewMemory()
	w := WithCSVBackup(m, dir, nil)
	require.NoError(t, w.EnsureTable(ctx, model.MustSchema(model.TableAccounts)))

	err := w.AppendRows(ctx, model.TableAccounts, []string{"account_id"}, [][]any{{"a-1"}})
	assert.NoError(t, err)
	assert.Equal(t, 1, m.RowCount(model.TableAccounts))
}
