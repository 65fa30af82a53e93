package repository

import (
	"context"
	"database/sql"
	"time"

	"anova_oven/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// DeviceRepo persists the devices the gateway announced, so a restart can
// pre-seed the registry before the first device list arrives.
type DeviceRepo interface {
	Upsert(ctx context.Context, d models.Device) error
	List(ctx context.Context) ([]models.Device, error)
}

// CredentialRepo keeps the single current token pair.
type CredentialRepo interface {
	Save(ctx context.Context, c models.Credentials) error
	Load(ctx context.Context) (models.Credentials, bool, error)
}

// SnapshotRepo keeps the last state snapshot per device.
type SnapshotRepo interface {
	Save(ctx context.Context, cookerID string, s *models.State) error
	Load(ctx context.Context, cookerID string) (*models.State, error)
}

// EventFilter narrows List; zero fields do not filter.
type EventFilter struct {
	From     time.Time
	To       time.Time
	Type     string
	CookerID string
}

type EventRepo interface {
	Append(ctx context.Context, e models.OvenEvent) error
	List(ctx context.Context, f EventFilter) ([]models.OvenEvent, error)
}

type Repository struct {
	DeviceRepo     DeviceRepo
	CredentialRepo CredentialRepo
	SnapshotRepo   SnapshotRepo
	EventRepo      EventRepo
	Auth           Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DeviceRepo:     NewDeviceSQLite(db),
		CredentialRepo: NewCredentialSQLite(db),
		SnapshotRepo:   NewSnapshotSQLite(db),
		EventRepo:      NewEventSQLite(db),
		Auth:           NewUserRepository(db),
	}
}
