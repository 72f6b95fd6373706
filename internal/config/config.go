package config

import "time"

// Config is the root configuration for a rampsim environment.
type Config struct {
	Instance   InstanceConfig   `yaml:"instance"`
	Warehouse  WarehouseConfig  `yaml:"warehouse"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	API        APIConfig        `yaml:"api"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Backup     BackupConfig     `yaml:"backup"`
	Events     EventsConfig     `yaml:"events"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// InstanceConfig identifies the environment being simulated.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// Warehouse backends.
const (
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
)

// WarehouseConfig selects and configures the warehouse sink.
type WarehouseConfig struct {
	Backend    string           `yaml:"backend"` // postgres or clickhouse
	Postgres   DBConfig         `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// DBConfig holds a single PostgreSQL (or TimescaleDB) connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	Schema   string `yaml:"schema"` // Namespace holding the raw tables
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ClickHouseConfig holds a ClickHouse connection.
type ClickHouseConfig struct {
	Addr        []string      `yaml:"addr"`
	Database    string        `yaml:"database"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// Checkpoint backends.
const (
	CheckpointFile   = "file"
	CheckpointSQLite = "sqlite"
)

// CheckpointConfig locates the persisted run state.
type CheckpointConfig struct {
	Backend string `yaml:"backend"` // file or sqlite
	Path    string `yaml:"path"`
}

// APIConfig holds market data endpoints.
type APIConfig struct {
	PricesURL  string        `yaml:"prices_url"`
	FXURL      string        `yaml:"fx_url"`
	StreamURL  string        `yaml:"stream_url"` // Optional ticker WebSocket; overrides REST prices
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries *int          `yaml:"max_retries"` // 0 disables retries (default 3)
	Fallback   *bool         `yaml:"fallback"`    // Use static quotes when live fetch fails (default true)
}

// Retries returns the configured retry count, or the default when unset.
func (a APIConfig) Retries() int {
	if a.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *a.MaxRetries
}

// UseFallback reports whether static quotes may replace a failed live fetch.
func (a APIConfig) UseFallback() bool {
	return a.Fallback == nil || *a.Fallback
}

// PipelineConfig holds generation volumes and the incremental window.
type PipelineConfig struct {
	FloorDays   *int   `yaml:"floor_days"` // First incremental date = today - floor_days (default 90)
	Seed        uint64 `yaml:"seed"`       // 0 = seed from the clock
	Accounts    int    `yaml:"accounts"`
	Deposits    int    `yaml:"deposits"`
	Withdrawals int    `yaml:"withdrawals"`
	Orders      int    `yaml:"orders"`
	DailyBatch  int    `yaml:"daily_batch"`
}

// BackupConfig enables the raw CSV copy of every appended batch.
type BackupConfig struct {
	Dir string `yaml:"dir"` // Empty disables backups
}

// EventsConfig enables step notifications on Kafka.
type EventsConfig struct {
	Brokers []string `yaml:"brokers"` // Empty disables publishing
	Topic   string   `yaml:"topic"`
}

// MetricsConfig holds Prometheus Pushgateway settings.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"` // Empty disables pushing
	Job            string `yaml:"job"`
}

// Floor returns the configured floor in days, or the default when unset.
// An explicit 0 starts the incremental load today.
func (p PipelineConfig) Floor() int {
	if p.FloorDays == nil {
		return DefaultFloorDays
	}
	return *p.FloorDays
}
