package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rickgao/rampsim/internal/model"
)

const dateLayout = "2006-01-02"

// fileRecord is the on-disk JSON layout.
type fileRecord struct {
	LastRunDate      *string              `json:"last_run_date"`
	LastRunTimestamp string               `json:"last_run_timestamp,omitempty"`
	Tables           map[model.Table]bool `json:"tables"`
}

// FileStore keeps the checkpoint in a human-readable JSON file.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the location of the checkpoint file.
func (s *FileStore) Path() string {
	return s.path
}

// Read loads the checkpoint. A missing file is a first run.
func (s *FileStore) Read(_ context.Context) (Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Checkpoint{}, nil
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}
	return decode(data)
}

// Write stamps UpdatedAt and atomically replaces the checkpoint file.
func (s *FileStore) Write(_ context.Context, cp Checkpoint) error {
	cp.UpdatedAt = s.now().UTC()
	data, err := encode(cp)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}

	// Persist the rename itself.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

func encode(cp Checkpoint) ([]byte, error) {
	rec := fileRecord{Tables: make(map[model.Table]bool, len(model.OneTimeTables))}
	if cp.HasLastDate() {
		d := cp.LastDate.Format(dateLayout)
		rec.LastRunDate = &d
	}
	if !cp.UpdatedAt.IsZero() {
		rec.LastRunTimestamp = cp.UpdatedAt.Format(time.RFC3339)
	}
	for _, t := range model.OneTimeTables {
		rec.Tables[t] = cp.IsLoaded(t)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint: %w", err)
	}
	return append(data, '\n'), nil
}

func decode(data []byte) (Checkpoint, error) {
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Checkpoint{}, fmt.Errorf("parse checkpoint: %w", err)
	}

	var cp Checkpoint
	if rec.LastRunDate != nil && *rec.LastRunDate != "" {
		d, err := time.Parse(dateLayout, *rec.LastRunDate)
		if err != nil {
			return Checkpoint{}, fmt.Errorf("parse last_run_date: %w", err)
		}
		cp.LastDate = d
	}
	if rec.LastRunTimestamp != "" {
		ts, err := time.Parse(time.RFC3339, rec.LastRunTimestamp)
		if err != nil {
			return Checkpoint{}, fmt.Errorf("parse last_run_timestamp: %w", err)
		}
		cp.UpdatedAt = ts
	}
	for t, loaded := range rec.Tables {
		if loaded {
			cp = cp.WithLoaded(t)
		}
	}
	return cp, nil
}

var _ Store = (*FileStore)(nil)
