package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	switch c.Warehouse.Backend {
	case BackendPostgres:
		if err := c.Warehouse.Postgres.validate("warehouse.postgres"); err != nil {
			return err
		}
	case BackendClickHouse:
		if len(c.Warehouse.ClickHouse.Addr) == 0 {
			return errors.New("warehouse.clickhouse.addr is required")
		}
		if c.Warehouse.ClickHouse.Database == "" {
			return errors.New("warehouse.clickhouse.database is required")
		}
	default:
		return fmt.Errorf("warehouse.backend must be %q or %q, got %q", BackendPostgres, BackendClickHouse, c.Warehouse.Backend)
	}

	switch c.Checkpoint.Backend {
	case CheckpointFile, CheckpointSQLite:
	default:
		return fmt.Errorf("checkpoint.backend must be %q or %q, got %q", CheckpointFile, CheckpointSQLite, c.Checkpoint.Backend)
	}
	if c.Checkpoint.Path == "" {
		return errors.New("checkpoint.path is required")
	}

	if c.API.Retries() < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if c.Pipeline.Floor() < 0 {
		return errors.New("pipeline.floor_days must be >= 0")
	}
	counts := []struct {
		name  string
		value int
	}{
		{"pipeline.accounts", c.Pipeline.Accounts},
		{"pipeline.deposits", c.Pipeline.Deposits},
		{"pipeline.withdrawals", c.Pipeline.Withdrawals},
		{"pipeline.orders", c.Pipeline.Orders},
		{"pipeline.daily_batch", c.Pipeline.DailyBatch},
	}
	for _, n := range counts {
		if n.value < 1 {
			return fmt.Errorf("%s must be >= 1", n.name)
		}
	}

	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		return errors.New("events.topic is required when events.brokers is set")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
