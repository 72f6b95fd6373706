package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/rampsim/internal/checkpoint"
	"github.com/rickgao/rampsim/internal/model"
	"github.com/rickgao/rampsim/internal/warehouse"
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Load the one-time reference tables not yet loaded",
	RunE: withApp(func(ctx context.Context, a *app) error {
		cp := a.checkpoint(ctx)
		_, res, err := a.loader().LoadReferenceTables(ctx, cp)
		if err != nil {
			return stepFailure(err)
		}
		if !res.Wrote() {
			a.logger.Info("all reference tables already loaded")
			return noop()
		}
		return nil
	}),
}

var incrementCmd = &cobra.Command{
	Use:   "increment",
	Short: "Append ramp transactions for the next unprocessed UTC date",
	RunE: withApp(func(ctx context.Context, a *app) error {
		cp := a.checkpoint(ctx)
		next, rows, err := a.loader().LoadNextIncrement(ctx, cp, today())
		if err != nil {
			return stepFailure(err)
		}
		if next.LastDate.Equal(cp.LastDate) {
			return noop()
		}
		a.logger.Info("increment complete", "date", next.LastDate.Format(time.DateOnly), "rows", rows)
		return nil
	}),
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Append ramp transactions for every date up to today (UTC)",
	RunE: withApp(func(ctx context.Context, a *app) error {
		cp := a.checkpoint(ctx)
		next, batches, err := a.loader().Backfill(ctx, cp, today())
		if batches > 0 {
			a.logger.Info("backfill progress", "batches", batches, "last_date", next.LastDate.Format(time.DateOnly))
		}
		if err != nil {
			return stepFailure(err)
		}
		if batches == 0 {
			return noop()
		}
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the checkpoint and per-table row counts",
	RunE: withApp(func(ctx context.Context, a *app) error {
		cp, err := a.store.Read(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "checkpoint unreadable: %v\n", err)
		}
		if err := printStatus(ctx, os.Stdout, cp, a.warehouse); err != nil {
			return &exitError{code: exitStepFailure, err: err}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(referenceCmd, incrementCmd, backfillCmd, statusCmd)
}

// today is the run date. Incremental dates are UTC calendar days whatever
// the host time zone.
func today() time.Time {
	return time.Now().UTC()
}

// withApp opens the app for the duration of run, cancelling on SIGINT/SIGTERM.
func withApp(run func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, slog.Default())
		if err != nil {
			return err
		}
		defer a.Close()
		defer a.pushMetrics()

		return run(ctx, a)
	}
}

// printStatus writes the checkpoint and row counts of every table. Rows above
// distinct ids mean a batch was appended twice.
func printStatus(ctx context.Context, w io.Writer, cp checkpoint.Checkpoint, insp warehouse.Inspector) error {
	last := "none"
	if cp.HasLastDate() {
		last = cp.LastDate.Format(time.DateOnly)
	}
	fmt.Fprintf(w, "last_date: %s\n", last)
	if !cp.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "updated_at: %s\n", cp.UpdatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-18s %-7s %10s %10s %10s\n", "TABLE", "LOADED", "ROWS", "DISTINCT", "DUPLICATES")
	tables := append(append([]model.Table{}, model.OneTimeTables...), model.TableRampTransactions)
	for _, t := range tables {
		loaded := "-"
		if t != model.TableRampTransactions {
			loaded = fmt.Sprint(cp.IsLoaded(t))
		}

		stats, err := insp.Stats(ctx, t, model.MustSchema(t).IDColumn)
		if errors.Is(err, warehouse.ErrTableNotFound) {
			fmt.Fprintf(w, "%-18s %-7s %10s %10s %10s\n", t, loaded, "missing", "-", "-")
			continue
		}
		if err != nil {
			return fmt.Errorf("stats for %s: %w", t, err)
		}
		fmt.Fprintf(w, "%-18s %-7s %10d %10d %10d\n", t, loaded, stats.Rows, stats.DistinctIDs, stats.Duplicates())
	}
	return nil
}
