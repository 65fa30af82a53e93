package service

import (
	"context"
	"sync"

	"anova_oven/internal/logger"
	"anova_oven/internal/models"
	"anova_oven/internal/mqtt"
	"anova_oven/internal/repository"
)

// fakeEventRepo records appended events and the last List filter.
type fakeEventRepo struct {
	mu        sync.Mutex
	appended  []models.OvenEvent
	appendErr error

	gotFilter repository.EventFilter
	events    []models.OvenEvent
	err       error
	calls     int
}

func (f *fakeEventRepo) Append(_ context.Context, e models.OvenEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeEventRepo) List(_ context.Context, filter repository.EventFilter) ([]models.OvenEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotFilter = filter
	return f.events, f.err
}

func (f *fakeEventRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

type fakeDeviceRepo struct {
	upserted []models.Device
	err      error
}

func (f *fakeDeviceRepo) Upsert(_ context.Context, d models.Device) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, d)
	return nil
}

func (f *fakeDeviceRepo) List(context.Context) ([]models.Device, error) {
	return f.upserted, f.err
}

type fakeCredentialRepo struct {
	saved []models.Credentials
	err   error
}

func (f *fakeCredentialRepo) Save(_ context.Context, c models.Credentials) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, c)
	return nil
}

func (f *fakeCredentialRepo) Load(context.Context) (models.Credentials, bool, error) {
	if len(f.saved) == 0 {
		return models.Credentials{}, false, f.err
	}
	return f.saved[len(f.saved)-1], true, nil
}

type fakeSnapshotRepo struct {
	states  map[string]*models.State
	saveErr error
	loadErr error
}

func (f *fakeSnapshotRepo) Save(_ context.Context, id string, s *models.State) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.states == nil {
		f.states = map[string]*models.State{}
	}
	f.states[id] = s
	return nil
}

func (f *fakeSnapshotRepo) Load(_ context.Context, id string) (*models.State, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.states[id], nil
}

// fakeSession stands in for the gateway client.
type fakeSession struct {
	phase   string
	devices []models.Device
	sent    []models.Command
	sendErr error
}

func (f *fakeSession) Phase() string { return f.phase }

func (f *fakeSession) Devices() []models.Device {
	return append([]models.Device(nil), f.devices...)
}

func (f *fakeSession) Device(id string) (models.Device, bool) {
	for _, d := range f.devices {
		if d.CookerID == id {
			return d, true
		}
	}
	return models.Device{}, false
}

func (f *fakeSession) SendCommand(_ context.Context, cmd models.Command) error {
	f.sent = append(f.sent, cmd)
	return f.sendErr
}

type fixture struct {
	events    *fakeEventRepo
	devices   *fakeDeviceRepo
	creds     *fakeCredentialRepo
	snapshots *fakeSnapshotRepo
	pub       *mqtt.FakePublisher
	repos     *repository.Repository
}

func newFixture() *fixture {
	f := &fixture{
		events:    &fakeEventRepo{},
		devices:   &fakeDeviceRepo{},
		creds:     &fakeCredentialRepo{},
		snapshots: &fakeSnapshotRepo{},
		pub:       mqtt.NewFakePublisher(),
	}
	f.repos = &repository.Repository{
		DeviceRepo:     f.devices,
		CredentialRepo: f.creds,
		SnapshotRepo:   f.snapshots,
		EventRepo:      f.events,
	}
	return f
}

func (f *fixture) recorder() *eventRecorder {
	return newEventRecorder(f.events, f.pub, logger.Nop())
}

func (f *fixture) coordinator() *Coordinator {
	return NewCoordinator(f.repos, f.pub, f.recorder(), logger.Nop())
}

func ptr[T any](v T) *T { return &v }
