package database

import (
	"context"
	"fmt"
)

// The audit sink keeps a single append-only table; full persistence
// schema design is out of scope.
const createScalingEventsTable = `
CREATE TABLE IF NOT EXISTS scaling_events (
	id         TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	severity   TEXT NOT NULL,
	message    TEXT NOT NULL,
	payload    JSONB,
	trace_id   TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scaling_events_created_at
	ON scaling_events (created_at DESC);
`

type Migrator struct {
	db *DB
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

func (m *Migrator) Run(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createScalingEventsTable); err != nil {
		return fmt.Errorf("create scaling_events table: %w", err)
	}
	return nil
}
