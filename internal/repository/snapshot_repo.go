package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"anova_oven/internal/models"
)

type SnapshotSQLite struct {
	db *sql.DB
}

func NewSnapshotSQLite(db *sql.DB) *SnapshotSQLite {
	return &SnapshotSQLite{db: db}
}

const (
	upsertSnapshotSQL = `
		INSERT INTO device_state (cooker_id, mode, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cooker_id) DO UPDATE SET
			mode=excluded.mode,
			payload=excluded.payload,
			updated_at=excluded.updated_at
	`

	selectSnapshotSQL = `SELECT payload FROM device_state WHERE cooker_id=?`
)

// Save stores s as the latest snapshot of cookerID.
func (r *SnapshotSQLite) Save(ctx context.Context, cookerID string, s *models.State) error {
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal state of %q: %w", cookerID, err)
	}

	// persisted as UTC; snapshots without a receive time are stamped now
	ts := s.ReceivedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	if _, err := r.db.ExecContext(ctx, upsertSnapshotSQL, cookerID, s.Mode, string(payload), ts); err != nil {
		return fmt.Errorf("save state of %q: %w", cookerID, err)
	}
	return nil
}

// Load returns the latest snapshot of cookerID, or nil if none was stored.
func (r *SnapshotSQLite) Load(ctx context.Context, cookerID string) (*models.State, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, selectSnapshotSQL, cookerID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load state of %q: %w", cookerID, err)
	}

	var s models.State
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("decode state of %q: %w", cookerID, err)
	}
	s.ReceivedAt = s.ReceivedAt.UTC()
	return &s, nil
}
