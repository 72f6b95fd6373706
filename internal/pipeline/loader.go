package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/rampsim/internal/checkpoint"
	"github.com/rickgao/rampsim/internal/cursor"
	"github.com/rickgao/rampsim/internal/events"
	"github.com/rickgao/rampsim/internal/generate"
	"github.com/rickgao/rampsim/internal/metrics"
	"github.com/rickgao/rampsim/internal/model"
	"github.com/rickgao/rampsim/internal/warehouse"
)

// KeyProvider reads persisted foreign keys.
type KeyProvider interface {
	AccountIDs(ctx context.Context) ([]string, error)
	FillableOrders(ctx context.Context) ([]model.OrderRef, error)
}

// QuoteSource supplies the market snapshot generation runs against.
type QuoteSource interface {
	Quotes(ctx context.Context) (model.Quotes, error)
}

// Generator produces entity rows.
type Generator interface {
	Accounts(n int) []model.Account
	Deposits(n int, accountIDs []string) ([]model.Deposit, error)
	Withdrawals(n int, accountIDs []string) ([]model.Withdrawal, error)
	Orders(n int, accountIDs []string) ([]model.Order, error)
	Executions(orders []model.OrderRef) []model.Execution
	RampTransactions(n int, day time.Time, accountIDs []string) ([]model.RampTransaction, error)
}

// GeneratorFactory builds a Generator for one step.
type GeneratorFactory func(seed uint64, quotes model.Quotes, now time.Time) Generator

func defaultGenerators(seed uint64, quotes model.Quotes, now time.Time) Generator {
	return generate.New(seed, quotes, now)
}

// Config holds row counts and the incremental window.
type Config struct {
	Instance    string
	Seed        uint64 // 0 seeds from the clock
	FloorDays   int
	Accounts    int
	Deposits    int
	Withdrawals int
	Orders      int
	DailyBatch  int
}

// Deps are the Loader's collaborators. Publisher, Metrics, Generators and
// Now are optional.
type Deps struct {
	Sink       warehouse.Sink
	Keys       KeyProvider
	Quotes     QuoteSource
	Store      checkpoint.Store
	Publisher  events.Publisher
	Metrics    *metrics.Recorder
	Generators GeneratorFactory
	Now        func() time.Time
}

// Result summarizes a LoadReferenceTables call.
type Result struct {
	Steps []StepResult
}

// StepResult is the outcome of one reference step.
type StepResult struct {
	Step    string
	Table   model.Table
	Rows    int
	Skipped bool // Already loaded; no generator was invoked
}

// Wrote reports whether any step committed in this call.
func (r Result) Wrote() bool {
	for _, s := range r.Steps {
		if !s.Skipped {
			return true
		}
	}
	return false
}

// Loader runs the reference and incremental loads. Use one Loader per run:
// quotes are fetched at most once and reused by every step.
type Loader struct {
	cfg    Config
	deps   Deps
	seed   uint64
	logger *slog.Logger

	quotes    *model.Quotes
	quotesErr error
}

// NewLoader creates a Loader.
func NewLoader(cfg Config, deps Deps, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	if deps.Generators == nil {
		deps.Generators = defaultGenerators
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(deps.Now().UnixNano())
	}

	return &Loader{
		cfg:    cfg,
		deps:   deps,
		seed:   seed,
		logger: logger,
	}
}

// LoadReferenceTables populates each one-time table not yet flagged in cp,
// in ReferenceSteps order. It returns the checkpoint as of the last committed
// step; on error that is the state persisted before the failing step.
func (l *Loader) LoadReferenceTables(ctx context.Context, cp checkpoint.Checkpoint) (checkpoint.Checkpoint, Result, error) {
	var res Result
	for _, step := range ReferenceSteps {
		if cp.IsLoaded(step.Table) {
			l.logger.Info("table already loaded, skipping", "table", step.Table)
			res.Steps = append(res.Steps, StepResult{Step: step.Name, Table: step.Table, Skipped: true})
			continue
		}

		next, rows, err := l.runReference(ctx, cp, step)
		if err != nil {
			return cp, res, err
		}
		cp = next
		res.Steps = append(res.Steps, StepResult{Step: step.Name, Table: step.Table, Rows: rows})
	}
	return cp, res, nil
}

func (l *Loader) runReference(ctx context.Context, cp checkpoint.Checkpoint, step Step) (checkpoint.Checkpoint, int, error) {
	start := time.Now()
	l.logger.Info("loading table", "table", step.Table)

	if err := requireLoaded(cp, step); err != nil {
		return l.fail(cp, step, err, start)
	}

	rows, err := l.produceReference(ctx, step)
	if err != nil {
		return l.fail(cp, step, err, start)
	}
	return l.commit(ctx, cp, step, time.Time{}, rows, cp.WithLoaded(step.Table), start)
}

// produceReference fetches keys and generates the rows of one reference step.
func (l *Loader) produceReference(ctx context.Context, step Step) ([][]any, error) {
	seed := stepSeed(l.seed, step.Table, time.Time{})

	switch step.Table {
	case model.TableAccounts:
		if err := l.probeAccounts(ctx, step); err != nil {
			return nil, err
		}
		g := l.deps.Generators(seed, model.Quotes{}, l.deps.Now())
		return model.Rows(g.Accounts(l.cfg.Accounts)), nil

	case model.TableDeposits:
		ids, err := l.accountIDs(ctx, step, time.Time{})
		if err != nil {
			return nil, err
		}
		g := l.deps.Generators(seed, model.Quotes{}, l.deps.Now())
		out, err := g.Deposits(l.cfg.Deposits, ids)
		return rowsOrErr(step, out, err)

	case model.TableWithdrawals:
		ids, err := l.accountIDs(ctx, step, time.Time{})
		if err != nil {
			return nil, err
		}
		g := l.deps.Generators(seed, model.Quotes{}, l.deps.Now())
		out, err := g.Withdrawals(l.cfg.Withdrawals, ids)
		return rowsOrErr(step, out, err)

	case model.TableOrders:
		ids, err := l.accountIDs(ctx, step, time.Time{})
		if err != nil {
			return nil, err
		}
		q, err := l.loadQuotes(ctx, step, time.Time{})
		if err != nil {
			return nil, err
		}
		g := l.deps.Generators(seed, q, l.deps.Now())
		out, err := g.Orders(l.cfg.Orders, ids)
		return rowsOrErr(step, out, err)

	case model.TableExecutions:
		orders, err := l.deps.Keys.FillableOrders(ctx)
		if err != nil {
			return nil, keyErr(step, time.Time{}, err)
		}
		if len(orders) == 0 {
			l.logger.Warn("no fillable orders, executions table will be empty", "table", step.Table)
		}
		q, err := l.loadQuotes(ctx, step, time.Time{})
		if err != nil {
			return nil, err
		}
		g := l.deps.Generators(seed, q, l.deps.Now())
		return model.Rows(g.Executions(orders)), nil
	}
	return nil, fmt.Errorf("no producer for table %s", step.Table)
}

// LoadNextIncrement appends the ramp transactions of the next unprocessed
// date. When the table is caught up it returns cp unchanged and zero rows.
func (l *Loader) LoadNextIncrement(ctx context.Context, cp checkpoint.Checkpoint, today time.Time) (checkpoint.Checkpoint, int, error) {
	step := IncrementStep
	floor := cursor.Floor(today, l.cfg.FloorDays)
	date, ok := cursor.Next(cp.LastDate, floor, today)
	if !ok {
		l.logger.Info("incremental table up to date", "last_date", cp.LastDate.Format(time.DateOnly))
		return cp, 0, nil
	}

	start := time.Now()
	l.logger.Info("loading incremental batch", "table", step.Table, "date", date.Format(time.DateOnly))

	if err := requireLoaded(cp, step); err != nil {
		err.Date = date
		return l.fail(cp, step, err, start)
	}

	rows, err := l.produceIncrement(ctx, step, date)
	if err != nil {
		return l.fail(cp, step, err, start)
	}
	return l.commit(ctx, cp, step, date, rows, cp.WithLastDate(date), start)
}

func (l *Loader) produceIncrement(ctx context.Context, step Step, date time.Time) ([][]any, error) {
	ids, err := l.accountIDs(ctx, step, date)
	if err != nil {
		return nil, err
	}
	q, err := l.loadQuotes(ctx, step, date)
	if err != nil {
		return nil, err
	}
	g := l.deps.Generators(stepSeed(l.seed, step.Table, date), q, l.deps.Now())
	txs, err := g.RampTransactions(l.cfg.DailyBatch, date, ids)
	if err != nil {
		return nil, genErr(step, date, err)
	}
	return model.Rows(txs), nil
}

// Backfill repeats LoadNextIncrement until the table is caught up or a step
// fails. It returns the number of date batches committed.
func (l *Loader) Backfill(ctx context.Context, cp checkpoint.Checkpoint, today time.Time) (checkpoint.Checkpoint, int, error) {
	batches := 0
	for {
		if err := ctx.Err(); err != nil {
			return cp, batches, err
		}
		next, _, err := l.LoadNextIncrement(ctx, cp, today)
		if err != nil {
			return next, batches, err
		}
		if next.LastDate.Equal(cp.LastDate) {
			return next, batches, nil
		}
		cp = next
		batches++
	}
}

// commit appends rows, then persists next. Only after both succeed is the
// step reported as committed.
func (l *Loader) commit(
	ctx context.Context,
	cp checkpoint.Checkpoint,
	step Step,
	date time.Time,
	rows [][]any,
	next checkpoint.Checkpoint,
	start time.Time,
) (checkpoint.Checkpoint, int, error) {
	schema := model.MustSchema(step.Table)
	if err := l.deps.Sink.EnsureTable(ctx, schema); err != nil {
		return l.fail(cp, step, stepErr(KindWriteFailure, step, date, err), start)
	}
	if err := l.deps.Sink.AppendRows(ctx, step.Table, schema.ColumnNames(), rows); err != nil {
		return l.fail(cp, step, stepErr(KindWriteFailure, step, date, err), start)
	}

	if err := l.deps.Store.Write(ctx, next); err != nil {
		l.logger.Error("rows written but checkpoint not saved; rerunning will duplicate this batch",
			"table", step.Table,
			"rows", len(rows),
			"error", err,
		)
		return l.fail(cp, step, stepErr(KindStateInconsistency, step, date, err), start)
	}

	elapsed := time.Since(start)
	l.deps.Metrics.StepCommitted(string(step.Table), len(rows), elapsed)
	if !date.IsZero() {
		l.deps.Metrics.LastDate(date)
	}

	attrs := []any{"table", step.Table, "rows", len(rows), "duration", elapsed}
	if !date.IsZero() {
		attrs = append(attrs, "date", date.Format(time.DateOnly))
	}
	l.logger.Info("step committed", attrs...)

	ev := events.StepCommitted{
		Instance:    l.cfg.Instance,
		Table:       string(step.Table),
		Rows:        len(rows),
		Fallback:    l.quotes != nil && l.quotes.Fallback,
		CommittedAt: l.deps.Now().UTC(),
	}
	if !date.IsZero() {
		ev.Date = date.Format(time.DateOnly)
	}
	if err := l.deps.Publisher.Publish(ctx, ev); err != nil {
		l.logger.Warn("publish step event failed", "table", step.Table, "error", err)
	}

	return next, len(rows), nil
}

// fail records a failed step and returns cp unchanged.
func (l *Loader) fail(cp checkpoint.Checkpoint, step Step, err error, start time.Time) (checkpoint.Checkpoint, int, error) {
	var se *StepError
	if !errors.As(err, &se) {
		se = stepErr(KindExternalFetchFailure, step, time.Time{}, err)
		err = se
	}
	l.deps.Metrics.StepFailed(string(step.Table), se.Kind.String(), time.Since(start))
	l.logger.Error("step failed", "table", step.Table, "kind", se.Kind, "error", se.Err)
	return cp, 0, err
}

// loadQuotes fetches quotes on first use and caches the outcome for the run.
func (l *Loader) loadQuotes(ctx context.Context, step Step, date time.Time) (model.Quotes, error) {
	if l.quotes == nil && l.quotesErr == nil {
		q, err := l.deps.Quotes.Quotes(ctx)
		if err != nil {
			l.quotesErr = err
		} else {
			l.quotes = &q
			l.deps.Metrics.QuotesFallback(q.Fallback)
		}
	}
	if l.quotesErr != nil {
		return model.Quotes{}, stepErr(KindExternalFetchFailure, step, date, l.quotesErr)
	}
	return *l.quotes, nil
}

// probeAccounts warns when the accounts table already has rows, which means
// an earlier run appended accounts without recording it.
func (l *Loader) probeAccounts(ctx context.Context, step Step) error {
	ids, err := l.deps.Keys.AccountIDs(ctx)
	if errors.Is(err, warehouse.ErrTableNotFound) {
		return nil
	}
	if err != nil {
		return stepErr(KindExternalFetchFailure, step, time.Time{}, err)
	}
	if len(ids) > 0 {
		l.logger.Warn("accounts table is not empty but not flagged loaded; appending anyway",
			"existing", len(ids),
		)
	}
	return nil
}

func (l *Loader) accountIDs(ctx context.Context, step Step, date time.Time) ([]string, error) {
	ids, err := l.deps.Keys.AccountIDs(ctx)
	if err != nil {
		return nil, keyErr(step, date, err)
	}
	if len(ids) == 0 {
		return nil, stepErr(KindDependencyUnavailable, step, date, fmt.Errorf("%s: %w", model.TableAccounts, generate.ErrNoKeys))
	}
	return ids, nil
}

// requireLoaded checks the checkpoint flags of everything step depends on.
func requireLoaded(cp checkpoint.Checkpoint, step Step) *StepError {
	for _, req := range step.Requires {
		if !cp.IsLoaded(req) {
			return stepErr(KindDependencyUnavailable, step, time.Time{}, fmt.Errorf("%s not loaded", req))
		}
	}
	return nil
}

// keyErr classifies a key lookup failure: a missing parent table is a
// dependency problem, anything else a failed read.
func keyErr(step Step, date time.Time, err error) *StepError {
	if errors.Is(err, warehouse.ErrTableNotFound) {
		return stepErr(KindDependencyUnavailable, step, date, err)
	}
	return stepErr(KindExternalFetchFailure, step, date, err)
}

func genErr(step Step, date time.Time, err error) *StepError {
	if errors.Is(err, generate.ErrNoKeys) {
		return stepErr(KindDependencyUnavailable, step, date, err)
	}
	return stepErr(KindExternalFetchFailure, step, date, err)
}

func rowsOrErr[T model.Record](step Step, records []T, err error) ([][]any, error) {
	if err != nil {
		return nil, genErr(step, time.Time{}, err)
	}
	return model.Rows(records), nil
}
