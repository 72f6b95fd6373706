package checkpoint

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/rampsim/internal/cursor"
	"github.com/rickgao/rampsim/internal/model"
)

// Flags records which one-time tables have been populated.
type Flags struct {
	Accounts    bool
	Deposits    bool
	Withdrawals bool
	Orders      bool
	Executions  bool
}

// Checkpoint is the persisted progress record.
type Checkpoint struct {
	// LastDate is the last fully processed incremental date (UTC midnight).
	// The zero value means no batch has been processed yet.
	LastDate time.Time

	Loaded Flags

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time
}

// HasLastDate reports whether an incremental batch has been committed.
func (c Checkpoint) HasLastDate() bool {
	return !c.LastDate.IsZero()
}

// IsLoaded reports whether a one-time table has been populated.
// The incremental table is never flagged.
func (c Checkpoint) IsLoaded(t model.Table) bool {
	switch t {
	case model.TableAccounts:
		return c.Loaded.Accounts
	case model.TableDeposits:
		return c.Loaded.Deposits
	case model.TableWithdrawals:
		return c.Loaded.Withdrawals
	case model.TableOrders:
		return c.Loaded.Orders
	case model.TableExecutions:
		return c.Loaded.Executions
	}
	return false
}

// WithLoaded returns a copy with the table's flag set.
func (c Checkpoint) WithLoaded(t model.Table) Checkpoint {
	switch t {
	case model.TableAccounts:
		c.Loaded.Accounts = true
	case model.TableDeposits:
		c.Loaded.Deposits = true
	case model.TableWithdrawals:
		c.Loaded.Withdrawals = true
	case model.TableOrders:
		c.Loaded.Orders = true
	case model.TableExecutions:
		c.Loaded.Executions = true
	}
	return c
}

// WithLastDate returns a copy advanced to the given date.
func (c Checkpoint) WithLastDate(d time.Time) Checkpoint {
	c.LastDate = cursor.Day(d)
	return c
}

// AllLoaded reports whether every one-time table has been populated.
func (c Checkpoint) AllLoaded() bool {
	for _, t := range model.OneTimeTables {
		if !c.IsLoaded(t) {
			return false
		}
	}
	return true
}

// Store persists checkpoints. Read returns the zero Checkpoint and a nil
// error when nothing has been written yet. Write replaces the record as a
// whole; readers never observe a partial write.
type Store interface {
	Read(ctx context.Context) (Checkpoint, error)
	Write(ctx context.Context, cp Checkpoint) error
}

// Load reads the checkpoint, treating any read failure as a first run.
func Load(ctx context.Context, store Store, logger *slog.Logger) Checkpoint {
	if logger == nil {
		logger = slog.Default()
	}
	cp, err := store.Read(ctx)
	if err != nil {
		logger.Error("checkpoint unreadable, starting from an empty checkpoint", "error", err)
		return Checkpoint{}
	}
	return cp
}
