package service

import (
	"context"
	"errors"
	"testing"

	"anova_oven/internal/models"
)

func TestMonitoringService_ListDevices_FillsStoredSnapshots(t *testing.T) {
	f := newFixture()
	stored := &models.State{Mode: "IDLE"}
	f.snapshots.states = map[string]*models.State{"oven-2": stored}

	live := &models.State{Mode: "COOK"}
	s := &fakeSession{devices: []models.Device{
		{CookerID: "oven-1", State: live},
		{CookerID: "oven-2"},
		{CookerID: "oven-3"},
	}}
	svc := NewMonitoringService(s, f.snapshots, f.coordinator())

	got, err := svc.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("devices = %d, want 3", len(got))
	}
	if got[0].State != live {
		t.Fatalf("live state replaced")
	}
	if got[1].State != stored {
		t.Fatalf("stored snapshot not used for oven-2")
	}
	if got[2].State != nil {
		t.Fatalf("oven-3 state = %+v, want nil", got[2].State)
	}
	if s.devices[1].State != nil {
		t.Fatalf("session cache mutated")
	}
}

func TestMonitoringService_GetDevice(t *testing.T) {
	f := newFixture()
	s := &fakeSession{devices: []models.Device{{CookerID: "oven-1"}}}
	svc := NewMonitoringService(s, f.snapshots, f.coordinator())

	if _, err := svc.GetDevice(context.Background(), "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}

	f.snapshots.loadErr = errors.New("db down")
	if _, err := svc.GetDevice(context.Background(), "oven-1"); !errors.Is(err, f.snapshots.loadErr) {
		t.Fatalf("err = %v, want load error", err)
	}
}

func TestMonitoringService_SubscribeUsesCoordinator(t *testing.T) {
	f := newFixture()
	c := f.coordinator()
	svc := NewMonitoringService(&fakeSession{}, f.snapshots, c)

	ch, cancel := svc.Subscribe("oven-1")
	defer cancel()

	d := sampleDevice("oven-1")
	if err := c.OnState(context.Background(), d, d.State); err != nil {
		t.Fatalf("OnState: %v", err)
	}
	if got := <-ch; got.CookerID != "oven-1" {
		t.Fatalf("got %q", got.CookerID)
	}
}

func TestMonitoringService_ConnectionPhase(t *testing.T) {
	f := newFixture()
	svc := NewMonitoringService(&fakeSession{phase: "connected"}, f.snapshots, f.coordinator())
	if got := svc.ConnectionPhase(); got != "connected" {
		t.Fatalf("phase = %q", got)
	}
}

func TestNewService_Wiring(t *testing.T) {
	f := newFixture()
	svc := NewService(f.repos, &fakeSession{}, Options{Platform: "android", SigningKey: "k"})
	if svc.Coordinator == nil || svc.Monitoring == nil || svc.Cook == nil || svc.EventLog == nil || svc.Authorization == nil {
		t.Fatalf("service not fully wired: %+v", svc)
	}
}
