package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// checkpointRow is the single persisted row of the SQLite store.
type checkpointRow struct {
	ID                uint `gorm:"primaryKey"`
	LastRunDate       *string
	AccountsLoaded    bool
	DepositsLoaded    bool
	WithdrawalsLoaded bool
	OrdersLoaded      bool
	ExecutionsLoaded  bool
	UpdatedAt         time.Time `gorm:"autoUpdateTime:false"`
}

func (checkpointRow) TableName() string { return "pipeline_checkpoints" }

const singletonID = 1

// SQLiteStore keeps the checkpoint as one row in a SQLite database,
// inspectable with the sqlite3 shell.
type SQLiteStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}
	if err := db.AutoMigrate(&checkpointRow{}); err != nil {
		return nil, fmt.Errorf("migrate checkpoint db: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Read loads the checkpoint row. No row is a first run.
func (s *SQLiteStore) Read(ctx context.Context) (Checkpoint, error) {
	var row checkpointRow
	err := s.db.WithContext(ctx).First(&row, singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Checkpoint{}, nil
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("read checkpoint row: %w", err)
	}

	cp := Checkpoint{
		Loaded: Flags{
			Accounts:    row.AccountsLoaded,
			Deposits:    row.DepositsLoaded,
			Withdrawals: row.WithdrawalsLoaded,
			Orders:      row.OrdersLoaded,
			Executions:  row.ExecutionsLoaded,
		},
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.LastRunDate != nil && *row.LastRunDate != "" {
		d, err := time.Parse(dateLayout, *row.LastRunDate)
		if err != nil {
			return Checkpoint{}, fmt.Errorf("parse last_run_date: %w", err)
		}
		cp.LastDate = d
	}
	return cp, nil
}

// Write upserts the checkpoint row in a single statement.
func (s *SQLiteStore) Write(ctx context.Context, cp Checkpoint) error {
	row := checkpointRow{
		ID:                singletonID,
		AccountsLoaded:    cp.Loaded.Accounts,
		DepositsLoaded:    cp.Loaded.Deposits,
		WithdrawalsLoaded: cp.Loaded.Withdrawals,
		OrdersLoaded:      cp.Loaded.Orders,
		ExecutionsLoaded:  cp.Loaded.Executions,
		UpdatedAt:         s.now().UTC(),
	}
	if cp.HasLastDate() {
		d := cp.LastDate.Format(dateLayout)
		row.LastRunDate = &d
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("write checkpoint row: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*SQLiteStore)(nil)
