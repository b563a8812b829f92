package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/veloportal/internal/metrics"
	"github.com/yourusername/veloportal/internal/store"
)

// Store persists full-state snapshots.
type Store interface {
	Save(ctx context.Context, d *store.Dump) error
	Load(ctx context.Context) (*store.Dump, error)
}

// FileStore keeps the latest snapshot in a single file, written
// atomically via a temp file rename.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the snapshot, replacing any previous one.
func (f *FileStore) Save(_ context.Context, d *store.Dump) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	metrics.SnapshotSavesTotal.Inc()
	return nil
}

// Load reads the latest snapshot.
func (f *FileStore) Load(_ context.Context) (*store.Dump, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	d, err := Decode(data)
	if err != nil {
		return nil, err
	}

	metrics.SnapshotLoadsTotal.Inc()
	return d, nil
}
