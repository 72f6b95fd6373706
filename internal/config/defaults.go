package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultWarehouseBackend  = BackendPostgres
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultDBSchema          = "public"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultClickHouseAddr    = "localhost:9000"
	DefaultClickHouseDB      = "default"
	DefaultClickHouseTimeout = 10 * time.Second
	DefaultCheckpointBackend = CheckpointFile
	DefaultCheckpointPath    = "data/metadata/last_run.json"
	DefaultPricesURL         = "https://api.coingecko.com/api/v3/simple/price"
	DefaultFXURL             = "https://open.er-api.com/v6/latest/USD"
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultFloorDays         = 90
	DefaultAccounts          = 500
	DefaultDeposits          = 1000
	DefaultWithdrawals       = 500
	DefaultOrders            = 2000
	DefaultDailyBatch        = 500
	DefaultEventsTopic       = "rampsim.step_committed"
	DefaultMetricsJob        = "rampsim"
)

func (c *Config) applyDefaults() {
	// Warehouse defaults
	if c.Warehouse.Backend == "" {
		c.Warehouse.Backend = DefaultWarehouseBackend
	}
	applyDBDefaults(&c.Warehouse.Postgres)
	if len(c.Warehouse.ClickHouse.Addr) == 0 {
		c.Warehouse.ClickHouse.Addr = []string{DefaultClickHouseAddr}
	}
	if c.Warehouse.ClickHouse.Database == "" {
		c.Warehouse.ClickHouse.Database = DefaultClickHouseDB
	}
	if c.Warehouse.ClickHouse.DialTimeout == 0 {
		c.Warehouse.ClickHouse.DialTimeout = DefaultClickHouseTimeout
	}

	// Checkpoint defaults
	if c.Checkpoint.Backend == "" {
		c.Checkpoint.Backend = DefaultCheckpointBackend
	}
	if c.Checkpoint.Path == "" {
		c.Checkpoint.Path = DefaultCheckpointPath
	}

	// API defaults
	if c.API.PricesURL == "" {
		c.API.PricesURL = DefaultPricesURL
	}
	if c.API.FXURL == "" {
		c.API.FXURL = DefaultFXURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == nil {
		c.API.MaxRetries = intPtr(DefaultMaxRetries)
	}

	// Pipeline defaults
	if c.Pipeline.FloorDays == nil {
		c.Pipeline.FloorDays = intPtr(DefaultFloorDays)
	}
	if c.Pipeline.Accounts == 0 {
		c.Pipeline.Accounts = DefaultAccounts
	}
	if c.Pipeline.Deposits == 0 {
		c.Pipeline.Deposits = DefaultDeposits
	}
	if c.Pipeline.Withdrawals == 0 {
		c.Pipeline.Withdrawals = DefaultWithdrawals
	}
	if c.Pipeline.Orders == 0 {
		c.Pipeline.Orders = DefaultOrders
	}
	if c.Pipeline.DailyBatch == 0 {
		c.Pipeline.DailyBatch = DefaultDailyBatch
	}

	// Events and metrics defaults
	if c.Events.Topic == "" {
		c.Events.Topic = DefaultEventsTopic
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = DefaultMetricsJob
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.Schema == "" {
		db.Schema = DefaultDBSchema
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

func intPtr(v int) *int { return &v }
