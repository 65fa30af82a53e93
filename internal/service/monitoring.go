package service

import (
	"context"

	"anova_oven/internal/models"
	"anova_oven/internal/repository"
)

type MonitoringService struct {
	session   Session
	snapshots repository.SnapshotRepo
	feed      *Coordinator
}

func NewMonitoringService(session Session, snapshots repository.SnapshotRepo, feed *Coordinator) *MonitoringService {
	return &MonitoringService{session: session, snapshots: snapshots, feed: feed}
}

// ListDevices returns the session's devices, filling in the last persisted
// snapshot for devices that have not reported since startup.
func (s *MonitoringService) ListDevices(ctx context.Context) ([]models.Device, error) {
	devices := s.session.Devices()
	for i := range devices {
		if err := s.withStoredState(ctx, &devices[i]); err != nil {
			return nil, err
		}
	}
	return devices, nil
}

func (s *MonitoringService) GetDevice(ctx context.Context, cookerID string) (models.Device, error) {
	d, ok := s.session.Device(cookerID)
	if !ok {
		return models.Device{}, ErrDeviceNotFound
	}
	if err := s.withStoredState(ctx, &d); err != nil {
		return models.Device{}, err
	}
	return d, nil
}

func (s *MonitoringService) ConnectionPhase() string {
	return s.session.Phase()
}

func (s *MonitoringService) Subscribe(cookerID string) (<-chan models.Device, func()) {
	return s.feed.Subscribe(cookerID)
}

func (s *MonitoringService) withStoredState(ctx context.Context, d *models.Device) error {
	if d.State != nil {
		return nil
	}
	st, err := s.snapshots.Load(ctx, d.CookerID)
	if err != nil {
		return err
	}
	d.State = st
	return nil
}
