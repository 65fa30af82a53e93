package service

import (
	"context"
	"errors"
	"time"

	"anova_oven/internal/logger"
	"anova_oven/internal/models"
	"anova_oven/internal/mqtt"
	"anova_oven/internal/repository"
)

// ErrDeviceNotFound is returned for cooker ids the session does not know.
var ErrDeviceNotFound = errors.New("device not found")

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitoring exposes the cached device view.
type Monitoring interface {
	ListDevices(ctx context.Context) ([]models.Device, error)
	GetDevice(ctx context.Context, cookerID string) (models.Device, error)
	// ConnectionPhase reports the gateway session lifecycle phase.
	ConnectionPhase() string
	// Subscribe streams device updates; an empty cookerID receives all devices.
	Subscribe(cookerID string) (<-chan models.Device, func())
}

// Cook starts and stops cooks on a device.
type Cook interface {
	StartCook(ctx context.Context, cookerID string, p models.CookParams) error
	StopCook(ctx context.Context, cookerID string) error
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.OvenEvent, error)
}

// Session is the part of the gateway session the services drive.
type Session interface {
	Phase() string
	Devices() []models.Device
	Device(cookerID string) (models.Device, bool)
	SendCommand(ctx context.Context, cmd models.Command) error
}

// LogFilter supports history filtering by time range, type and device.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string    // "", "COOK_STARTED", "COOK_TARGET_REACHED", ...
	CookerID string
}

// Options carries the settings the services need from config.
type Options struct {
	Platform string
	// DefaultUnit applies to cook requests that do not name a unit.
	DefaultUnit models.TemperatureUnit
	SigningKey  string
	TokenTTL    time.Duration
	Publisher   mqtt.Publisher
	Logger      *logger.Logger
}

type Service struct {
	Monitoring
	Cook
	EventLog
	Authorization

	// Coordinator is registered as the session listener.
	Coordinator *Coordinator
}

// NewService wires the repository layer and the gateway session into the
// concrete services.
func NewService(repos *repository.Repository, session Session, opts Options) *Service {
	if opts.Publisher == nil {
		opts.Publisher = mqtt.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	events := newEventRecorder(repos.EventRepo, opts.Publisher, opts.Logger)
	coord := NewCoordinator(repos, opts.Publisher, events, opts.Logger.Named("coordinator"))
	return &Service{
		Monitoring:    NewMonitoringService(session, repos.SnapshotRepo, coord),
		Cook:          NewCookService(session, events, opts.Platform, opts.DefaultUnit),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
		Coordinator:   coord,
	}
}
