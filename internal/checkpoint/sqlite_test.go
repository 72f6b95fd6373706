package checkpoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/rampsim/internal/model"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "checkpoint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cp, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Checkpoint{}, cp)

	first := Checkpoint{}.WithLoaded(model.TableAccounts)
	require.NoError(t, s.Write(ctx, first))

	second := first.
		WithLoaded(model.TableDeposits).
		WithLastDate(time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Write(ctx, second))

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Loaded, got.Loaded)
	assert.Equal(t, second.LastDate, got.LastDate)

	var rows int64
	require.NoError(t, s.db.Model(&checkpointRow{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
