package service

import (
	"context"
	"fmt"
	"sync"

	"anova_oven/internal/logger"
	"anova_oven/internal/models"
	"anova_oven/internal/mqtt"
	"anova_oven/internal/oven"
	"anova_oven/internal/repository"
)

const subscriberBuffer = 8

// Coordinator receives the session notifications. It persists devices,
// tokens and snapshots, records events, publishes to MQTT and fans state
// updates out to subscribers.
type Coordinator struct {
	devices   repository.DeviceRepo
	creds     repository.CredentialRepo
	snapshots repository.SnapshotRepo
	events    *eventRecorder
	pub       mqtt.Publisher
	log       *logger.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
}

type subscriber struct {
	cookerID string
	ch       chan models.Device
}

var _ oven.Listener = (*Coordinator)(nil)

func NewCoordinator(repos *repository.Repository, pub mqtt.Publisher, events *eventRecorder, log *logger.Logger) *Coordinator {
	return &Coordinator{
		devices:   repos.DeviceRepo,
		creds:     repos.CredentialRepo,
		snapshots: repos.SnapshotRepo,
		events:    events,
		pub:       pub,
		log:       log,
		subs:      make(map[int]subscriber),
	}
}

func (c *Coordinator) OnState(ctx context.Context, device models.Device, st *models.State) error {
	if err := c.snapshots.Save(ctx, device.CookerID, st); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	if err := c.pub.PublishState(device); err != nil {
		c.log.Warnw("mqtt_publish_failed", "cooker_id", device.CookerID, "err", err)
	}
	c.broadcast(device)
	return nil
}

func (c *Coordinator) OnNewDevice(ctx context.Context, device models.Device) error {
	if err := c.devices.Upsert(ctx, device); err != nil {
		return fmt.Errorf("persist device: %w", err)
	}
	c.broadcast(device)
	return c.events.record(ctx, models.OvenEvent{
		CookerID:    device.CookerID,
		Type:        models.EventDeviceDiscovered,
		Description: "Device discovered",
		Metadata:    map[string]any{"type": device.Type},
	})
}

// OnNewToken stores the rotated pair; a failure here ends the session, since
// the next restart would otherwise use a revoked refresh token.
func (c *Coordinator) OnNewToken(ctx context.Context, creds models.Credentials) error {
	if err := c.creds.Save(ctx, creds); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	meta := map[string]any{}
	if exp, ok := oven.TokenExpiry(creds.AccessToken); ok {
		meta["expires_at"] = exp.UTC()
	}
	return c.events.record(ctx, models.OvenEvent{
		Type:        models.EventTokenRefreshed,
		Description: "Access token refreshed",
		Metadata:    meta,
	})
}

func (c *Coordinator) OnTargetReached(ctx context.Context, device models.Device, target models.Target) error {
	c.log.Infow("cook_target_reached", "cooker_id", device.CookerID, "kind", string(target.Kind))
	return c.events.record(ctx, models.OvenEvent{
		CookerID:    device.CookerID,
		Type:        models.EventTargetReached,
		Description: targetDescription(target),
		Metadata:    targetMetadata(target),
	})
}

func targetDescription(t models.Target) string {
	switch t.Kind {
	case models.TargetProbe:
		return "Probe target reached"
	case models.TargetTimer:
		return "Timer target reached"
	default:
		return "Cook target reached"
	}
}

func targetMetadata(t models.Target) map[string]any {
	meta := map[string]any{"kind": string(t.Kind)}
	switch t.Kind {
	case models.TargetProbe:
		if t.Temperature != nil {
			meta["temperature_c"] = t.Temperature.Celsius()
		}
		if t.TargetTemperature != nil {
			meta["target_temperature_c"] = t.TargetTemperature.Celsius()
		}
	case models.TargetTimer:
		meta["current_s"] = t.Current
		meta["initial_s"] = t.Initial
	}
	return meta
}

// Subscribe registers a listener for device updates. The returned cancel
// function must be called to release it. Slow subscribers miss updates.
func (c *Coordinator) Subscribe(cookerID string) (<-chan models.Device, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	ch := make(chan models.Device, subscriberBuffer)
	c.subs[id] = subscriber{cookerID: cookerID, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *Coordinator) broadcast(device models.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.subs {
		if s.cookerID != "" && s.cookerID != device.CookerID {
			continue
		}
		select {
		case s.ch <- device:
		default:
			c.log.Debugw("subscriber_lagging", "cooker_id", device.CookerID)
		}
	}
}
