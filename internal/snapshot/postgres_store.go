package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/veloportal/internal/database"
	"github.com/yourusername/veloportal/internal/metrics"
	"github.com/yourusername/veloportal/internal/store"
)

// PostgresStore keeps a history of snapshots in a snapshots table; Load
// returns the most recent one.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a Postgres-backed snapshot store.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the snapshots table if missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		)
	`
	if _, err := p.db.GetPool().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure snapshots schema: %w", err)
	}
	return nil
}

// Save inserts a new snapshot row.
func (p *PostgresStore) Save(ctx context.Context, d *store.Dump) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}

	query := `INSERT INTO snapshots (id, created_at, payload) VALUES ($1, $2, $3)`
	if _, err := p.db.GetPool().Exec(ctx, query, uuid.New(), time.Now().UTC(), data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	metrics.SnapshotSavesTotal.Inc()
	return nil
}

// Load returns the most recent snapshot.
func (p *PostgresStore) Load(ctx context.Context) (*store.Dump, error) {
	query := `SELECT payload FROM snapshots ORDER BY created_at DESC LIMIT 1`

	var data []byte
	err := p.db.GetPool().QueryRow(ctx, query).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no snapshot found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	d, err := Decode(data)
	if err != nil {
		return nil, err
	}

	metrics.SnapshotLoadsTotal.Inc()
	return d, nil
}

// Prune deletes all but the newest keep snapshots.
func (p *PostgresStore) Prune(ctx context.Context, keep int) error {
	query := `
		DELETE FROM snapshots
		WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY created_at DESC LIMIT $1
		)
	`
	if _, err := p.db.GetPool().Exec(ctx, query, keep); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return nil
}
