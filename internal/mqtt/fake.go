package mqtt

import (
	"sync"

	"anova_oven/internal/models"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// States contains every device snapshot that was published.
	States []models.Device

	// Events contains every event that was published.
	Events []models.OvenEvent

	// PublishError, if set, is returned by both publish methods.
	PublishError error

	Closed bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) PublishState(device models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.States = append(f.States, device)
	return nil
}

func (f *FakePublisher) PublishEvent(event models.OvenEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Events = append(f.Events, event)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// EventTypes returns the types of the published events in order.
func (f *FakePublisher) EventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Events))
	for _, e := range f.Events {
		out = append(out, e.Type)
	}
	return out
}

// NopPublisher drops everything; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishState(models.Device) error { return nil }

func (NopPublisher) PublishEvent(models.OvenEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
