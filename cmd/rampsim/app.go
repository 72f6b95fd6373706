package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/rampsim/internal/checkpoint"
	"github.com/rickgao/rampsim/internal/config"
	"github.com/rickgao/rampsim/internal/database"
	"github.com/rickgao/rampsim/internal/events"
	"github.com/rickgao/rampsim/internal/marketdata"
	"github.com/rickgao/rampsim/internal/metrics"
	"github.com/rickgao/rampsim/internal/pipeline"
	"github.com/rickgao/rampsim/internal/refkeys"
	"github.com/rickgao/rampsim/internal/version"
	"github.com/rickgao/rampsim/internal/warehouse"
)

// app holds the collaborators of one invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	warehouse warehouse.Warehouse
	store     checkpoint.Store
	publisher events.Publisher
	metrics   *metrics.Recorder
	closers   []func() error
}

// newApp loads the config and opens every connection. Config problems are
// returned as exit code 2, connection problems as 1.
func newApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	logger.Info("starting rampsim",
		"build", version.String(),
		"config", configPath,
	)

	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, configError(err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	if err := a.openWarehouse(ctx); err != nil {
		a.Close()
		return nil, &exitError{code: exitStepFailure, err: err}
	}
	if err := a.openStore(); err != nil {
		a.Close()
		return nil, &exitError{code: exitStepFailure, err: err}
	}

	a.publisher = events.Nop{}
	if len(cfg.Events.Brokers) > 0 {
		k := events.NewKafka(cfg.Events.Brokers, cfg.Events.Topic)
		a.publisher = k
		a.closers = append(a.closers, k.Close)
		logger.Info("publishing step events", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}

	return a, nil
}

func (a *app) openWarehouse(ctx context.Context) error {
	var wh warehouse.Warehouse
	switch a.cfg.Warehouse.Backend {
	case config.BackendClickHouse:
		ch := a.cfg.Warehouse.ClickHouse
		a.logger.Info("connecting to clickhouse", "addr", ch.Addr, "database", ch.Database)
		conn, err := warehouse.OpenClickHouse(ctx, ch, a.logger)
		if err != nil {
			return err
		}
		wh = conn

	default:
		pg := a.cfg.Warehouse.Postgres
		a.logger.Info("connecting to database",
			"host", pg.Host,
			"port", pg.Port,
			"database", pg.Name,
			"schema", pg.Schema,
		)
		pool, err := database.Connect(ctx, pg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		wh = warehouse.NewPostgres(pool, pg.Schema, a.logger)
	}
	a.logger.Info("warehouse connected", "backend", a.cfg.Warehouse.Backend)

	a.warehouse = warehouse.WithCSVBackup(wh, a.cfg.Backup.Dir, a.logger)
	a.closers = append(a.closers, a.warehouse.Close)
	return nil
}

func (a *app) openStore() error {
	path := a.cfg.Checkpoint.Path
	switch a.cfg.Checkpoint.Backend {
	case config.CheckpointSQLite:
		s, err := checkpoint.OpenSQLiteStore(path)
		if err != nil {
			return err
		}
		a.store = s
		a.closers = append(a.closers, s.Close)
	default:
		a.store = checkpoint.NewFileStore(path)
	}
	a.logger.Info("checkpoint store ready", "backend", a.cfg.Checkpoint.Backend, "path", path)
	return nil
}

// loader wires a Loader with live market data.
func (a *app) loader() *pipeline.Loader {
	api := a.cfg.API
	client := marketdata.NewClient(
		api.PricesURL,
		api.FXURL,
		marketdata.WithLogger(a.logger),
		marketdata.WithTimeout(api.Timeout),
		marketdata.WithRetries(api.Retries(), time.Second),
	)

	var stream marketdata.PriceSource
	if api.StreamURL != "" {
		stream = marketdata.NewTickerStream(api.StreamURL, api.Timeout, a.logger)
	}

	p := a.cfg.Pipeline
	return pipeline.NewLoader(pipeline.Config{
		Instance:    a.cfg.Instance.ID,
		Seed:        p.Seed,
		FloorDays:   p.Floor(),
		Accounts:    p.Accounts,
		Deposits:    p.Deposits,
		Withdrawals: p.Withdrawals,
		Orders:      p.Orders,
		DailyBatch:  p.DailyBatch,
	}, pipeline.Deps{
		Sink:      a.warehouse,
		Keys:      refkeys.New(a.warehouse),
		Quotes:    marketdata.NewService(client, client, stream, api.UseFallback(), a.logger),
		Store:     a.store,
		Publisher: a.publisher,
		Metrics:   a.metrics,
	}, a.logger)
}

func (a *app) checkpoint(ctx context.Context) checkpoint.Checkpoint {
	return checkpoint.Load(ctx, a.store, a.logger)
}

// pushMetrics sends run metrics to the Pushgateway when one is configured.
func (a *app) pushMetrics() {
	m := a.cfg.Metrics
	if m.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.metrics.Push(ctx, m.PushgatewayURL, m.Job, a.cfg.Instance.ID); err != nil {
		a.logger.Warn("failed to push metrics", "error", err)
	}
}

// Close releases connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}
