package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"anova_oven/internal/models"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite { return &DeviceSQLite{db: db} }

const (
	upsertDeviceSQL = `
		INSERT INTO devices (cooker_id, type, first_seen)
		VALUES (?, ?, ?)
		ON CONFLICT(cooker_id) DO UPDATE SET type=excluded.type
	`
	selectDevicesSQL = `SELECT cooker_id, type FROM devices ORDER BY first_seen ASC, cooker_id ASC`
)

// Upsert records a device; first_seen keeps the original discovery time.
func (r *DeviceSQLite) Upsert(ctx context.Context, d models.Device) error {
	if _, err := r.db.ExecContext(ctx, upsertDeviceSQL, d.CookerID, d.Type, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert device %q: %w", d.CookerID, err)
	}
	return nil
}

// List returns known devices in discovery order, without state.
func (r *DeviceSQLite) List(ctx context.Context) ([]models.Device, error) {
	rows, err := r.db.QueryContext(ctx, selectDevicesSQL)
	if err != nil {
		return nil, fmt.Errorf("select devices: %w", err)
	}
	defer rows.Close()

	var out []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.CookerID, &d.Type); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
