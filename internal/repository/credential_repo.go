package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"anova_oven/internal/models"
)

type CredentialSQLite struct {
	db *sql.DB
}

func NewCredentialSQLite(db *sql.DB) *CredentialSQLite { return &CredentialSQLite{db: db} }

const (
	credentialsRowID = 1

	upsertCredentialsSQL = `
		INSERT INTO credentials (id, access_token, refresh_token, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token=excluded.access_token,
			refresh_token=excluded.refresh_token,
			updated_at=excluded.updated_at
	`
	selectCredentialsSQL = `SELECT access_token, refresh_token FROM credentials WHERE id=?`
)

// Save replaces the stored token pair.
func (r *CredentialSQLite) Save(ctx context.Context, c models.Credentials) error {
	_, err := r.db.ExecContext(ctx, upsertCredentialsSQL, credentialsRowID, c.AccessToken, c.RefreshToken, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Load returns the stored pair; ok is false when nothing was saved yet.
func (r *CredentialSQLite) Load(ctx context.Context) (models.Credentials, bool, error) {
	var c models.Credentials
	err := r.db.QueryRowContext(ctx, selectCredentialsSQL, credentialsRowID).Scan(&c.AccessToken, &c.RefreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credentials{}, false, nil
	}
	if err != nil {
		return models.Credentials{}, false, fmt.Errorf("load credentials: %w", err)
	}
	return c, true, nil
}
