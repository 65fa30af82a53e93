package oven

import (
	"context"

	"anova_oven/internal/models"
)

// Listener receives session notifications. Hooks run on the read loop in
// registration order; a slow hook delays the next frame and a returned error
// tears the connection down, after which the client reconnects.
type Listener interface {
	// OnState is called for every decoded state snapshot.
	OnState(ctx context.Context, device models.Device, state *models.State) error
	// OnNewDevice is called once per device first seen in a device list.
	OnNewDevice(ctx context.Context, device models.Device) error
	// OnNewToken is called after a renewal with the new pair. The listener
	// is responsible for persisting it.
	OnNewToken(ctx context.Context, creds models.Credentials) error
	// OnTargetReached is called with the target that was being tracked when
	// the tracked target changed after having been reached.
	OnTargetReached(ctx context.Context, device models.Device, target models.Target) error
}

// NopListener implements every hook as a no-op. Embed it to implement only
// the hooks you need.
type NopListener struct{}

var _ Listener = NopListener{}

func (NopListener) OnState(context.Context, models.Device, *models.State) error { return nil }

func (NopListener) OnNewDevice(context.Context, models.Device) error { return nil }

func (NopListener) OnNewToken(context.Context, models.Credentials) error { return nil }

func (NopListener) OnTargetReached(context.Context, models.Device, models.Target) error { return nil }
