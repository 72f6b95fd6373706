package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/rampsim/internal/checkpoint"
	"github.com/rickgao/rampsim/internal/events"
	"github.com/rickgao/rampsim/internal/generate"
	"github.com/rickgao/rampsim/internal/model"
	"github.com/rickgao/rampsim/internal/refkeys"
	"github.com/rickgao/rampsim/internal/warehouse"
)

var (
	testToday = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	testNow   = func() time.Time { return testToday }
)

// memStore is an in-memory checkpoint store.
type memStore struct {
	mu       sync.Mutex
	cp       checkpoint.Checkpoint
	writes   int
	writeErr error
}

func (s *memStore) Read(context.Context) (checkpoint.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cp, nil
}

func (s *memStore) Write(_ context.Context, cp checkpoint.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.cp = cp
	s.writes++
	return nil
}

func (s *memStore) current() checkpoint.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cp
}

// stubQuotes returns a fixed snapshot and counts fetches.
type stubQuotes struct {
	calls int
	err   error
}

func (s *stubQuotes) Quotes(context.Context) (model.Quotes, error) {
	s.calls++
	if s.err != nil {
		return model.Quotes{}, s.err
	}
	return model.Quotes{
		Prices: map[string]decimal.Decimal{
			"bitcoin":  decimal.NewFromInt(65000),
			"ethereum": decimal.NewFromInt(3500),
			"solana":   decimal.NewFromInt(140),
			"tether":   decimal.NewFromInt(1),
		},
		FXRates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.RequireFromString("0.92"),
			"GBP": decimal.RequireFromString("0.79"),
			"CAD": decimal.RequireFromString("1.35"),
		},
	}, nil
}

// countingGenerator counts every generation call.
type countingGenerator struct {
	Generator
	calls *int
}

func (c countingGenerator) Accounts(n int) []model.Account {
	*c.calls++
	return c.Generator.Accounts(n)
}

func (c countingGenerator) Deposits(n int, ids []string) ([]model.Deposit, error) {
	*c.calls++
	return c.Generator.Deposits(n, ids)
}

func (c countingGenerator) Withdrawals(n int, ids []string) ([]model.Withdrawal, error) {
	*c.calls++
	return c.Generator.Withdrawals(n, ids)
}

func (c countingGenerator) Orders(n int, ids []string) ([]model.Order, error) {
	*c.calls++
	return c.Generator.Orders(n, ids)
}

func (c countingGenerator) Executions(orders []model.OrderRef) []model.Execution {
	*c.calls++
	return c.Generator.Executions(orders)
}

func (c countingGenerator) RampTransactions(n int, day time.Time, ids []string) ([]model.RampTransaction, error) {
	*c.calls++
	return c.Generator.RampTransactions(n, day, ids)
}

// orderedSink records the order tables are appended to.
type orderedSink struct {
	*warehouse.Memory
	order []model.Table
}

func (o *orderedSink) AppendRows(ctx context.Context, table model.Table, columns []string, rows [][]any) error {
	o.order = append(o.order, table)
	return o.Memory.AppendRows(ctx, table, columns, rows)
}

// recordingPublisher keeps published events.
type recordingPublisher struct {
	events []events.StepCommitted
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev events.StepCommitted) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

type harness struct {
	mem       *warehouse.Memory
	sink      *orderedSink
	store     *memStore
	quotes    *stubQuotes
	publisher *recordingPublisher
	genCalls  int
	loader    *Loader
}

func testConfig() Config {
	return Config{
		Instance:    "test",
		Seed:        42,
		FloorDays:   90,
		Accounts:    50,
		Deposits:    80,
		Withdrawals: 40,
		Orders:      120,
		DailyBatch:  25,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, testConfig())
}

func newHarnessWith(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		mem:       warehouse.NewMemory(),
		store:     &memStore{},
		quotes:    &stubQuotes{},
		publisher: &recordingPublisher{},
	}
	h.sink = &orderedSink{Memory: h.mem}
	h.loader = NewLoader(cfg, Deps{
		Sink:      h.sink,
		Keys:      refkeys.New(h.mem),
		Quotes:    h.quotes,
		Store:     h.store,
		Publisher: h.publisher,
		Generators: func(seed uint64, q model.Quotes, now time.Time) Generator {
			return countingGenerator{Generator: generate.New(seed, q, now), calls: &h.genCalls}
		},
		Now: testNow,
	}, nil)
	return h
}

// stringColumn returns a column of the memory warehouse as strings.
func (h *harness) stringColumn(table model.Table, name string) []string {
	vals := h.mem.Column(table, name)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i], _ = v.(string)
	}
	return out
}

func setOf(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

var errBoom = errors.New("boom")
