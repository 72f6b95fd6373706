package checkpoint

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/rampsim/internal/model"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(t.TempDir(), "metadata", "last_run.json"))
	s.now = func() time.Time { return time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC) }
	return s
}

func TestFileStore_MissingFileIsFirstRun(t *testing.T) {
	s := newTestFileStore(t)

	cp, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Checkpoint{}, cp)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	want := Checkpoint{}.
		WithLoaded(model.TableAccounts).
		WithLoaded(model.TableOrders).
		WithLastDate(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Write(ctx, want))

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.LastDate, got.LastDate)
	assert.Equal(t, want.Loaded, got.Loaded)
	assert.Equal(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC), got.UpdatedAt)
}

func TestFileStore_HumanReadableLayout(t *testing.T) {
	s := newTestFileStore(t)
	cp := Checkpoint{}.
		WithLoaded(model.TableAccounts).
		WithLastDate(time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Write(context.Background(), cp))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2026-07-19", raw["last_run_date"])
	assert.Equal(t, "2026-10-17T06:00:00Z", raw["last_run_timestamp"])

	tables, ok := raw["tables"].(map[string]any)
	require.True(t, ok, "tables is %T", raw["tables"])
	assert.Equal(t, true, tables["accounts"])
	assert.Equal(t, false, tables["trades"])
	assert.Len(t, tables, len(model.OneTimeTables))
}

func TestFileStore_NullDateWhenUnset(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, s.Write(context.Background(), Checkpoint{}.WithLoaded(model.TableAccounts)))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_run_date": null`)

	cp, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, cp.HasLastDate())
}

func TestFileStore_WriteLeavesNoTempFiles(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cp := Checkpoint{}.WithLastDate(time.Date(2026, 10, 1+i, 0, 0, 0, 0, time.UTC))
		require.NoError(t, s.Write(ctx, cp))
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "last_run.json", entries[0].Name())
}

func TestFileStore_CorruptFileIsAnError(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"last_run_date": "yesterday"`), 0o644))

	_, err := s.Read(context.Background())
	require.Error(t, err)

	// Load degrades to a first run.
	assert.Equal(t, Checkpoint{}, Load(context.Background(), s, nil))
}

func TestFileStore_ReadsOriginalLayout(t *testing.T) {
	// Files written before table flags existed only carry the date fields.
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	legacy := `{"last_run_date": "2026-09-30", "last_run_timestamp": "2026-09-30T08:15:00Z"}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacy), 0o644))

	cp, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), cp.LastDate)
	assert.Equal(t, Flags{}, cp.Loaded)
}
