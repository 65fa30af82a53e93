package service

import (
	"context"
	"errors"
	"fmt"

	"anova_oven/internal/models"
	"anova_oven/internal/oven"
)

type CookService struct {
	session  Session
	events   *eventRecorder
	platform string
	unit     models.TemperatureUnit
}

func NewCookService(session Session, events *eventRecorder, platform string, unit models.TemperatureUnit) *CookService {
	if unit == "" {
		unit = models.UnitCelsius
	}
	return &CookService{session: session, events: events, platform: platform, unit: unit}
}

// StartCook validates p, builds the stage program and sends CMD_APO_START.
// Validation errors wrap models.ErrInvalidProgram; nothing is sent then.
func (s *CookService) StartCook(ctx context.Context, cookerID string, p models.CookParams) error {
	if _, ok := s.session.Device(cookerID); !ok {
		return ErrDeviceNotFound
	}
	if p.Unit == "" {
		p.Unit = s.unit
	}
	stages, err := models.NewCookProgram(p, s.platform)
	if err != nil {
		return err
	}

	cmd := models.NewStartCommand(cookerID, s.platform, stages)
	if err := s.session.SendCommand(ctx, cmd); err != nil {
		return s.commandFailed(ctx, cookerID, cmd, err)
	}

	return s.events.record(ctx, models.OvenEvent{
		CookerID:    cookerID,
		Type:        models.EventCookStarted,
		Description: "Cook started",
		Metadata:    cookMetadata(p, len(stages)),
	})
}

// StopCook sends CMD_APO_STOP.
func (s *CookService) StopCook(ctx context.Context, cookerID string) error {
	if _, ok := s.session.Device(cookerID); !ok {
		return ErrDeviceNotFound
	}
	cmd := models.NewStopCommand(cookerID)
	if err := s.session.SendCommand(ctx, cmd); err != nil {
		return s.commandFailed(ctx, cookerID, cmd, err)
	}
	return s.events.record(ctx, models.OvenEvent{
		CookerID:    cookerID,
		Type:        models.EventCookStopped,
		Description: "Cook stopped",
	})
}

// commandFailed logs gateway-side failures to the event log and returns err.
func (s *CookService) commandFailed(ctx context.Context, cookerID string, cmd models.Command, err error) error {
	if !oven.IsCommandError(err) && !errors.Is(err, oven.ErrCommandTimeout) {
		return err
	}
	if recErr := s.events.record(ctx, models.OvenEvent{
		CookerID:    cookerID,
		Type:        models.EventCommandFailed,
		Description: fmt.Sprintf("%s failed", cmd.Command),
		Metadata:    map[string]any{"command": cmd.Command, "request_id": cmd.RequestID, "error": err.Error()},
	}); recErr != nil {
		s.events.log.Errorw("record_command_failure", "err", recErr)
	}
	return err
}

func cookMetadata(p models.CookParams, stages int) map[string]any {
	meta := map[string]any{
		"unit":      string(p.Unit),
		"sous_vide": p.SousVide,
		"stages":    stages,
	}
	if p.TargetTemperature != nil {
		meta["target_temperature"] = *p.TargetTemperature
	}
	if p.ProbeTemperature != nil {
		meta["probe_temperature"] = *p.ProbeTemperature
	}
	if p.TimerSeconds != nil {
		meta["timer_seconds"] = *p.TimerSeconds
	}
	if p.TimerMode != "" {
		meta["timer_mode"] = string(p.TimerMode)
	}
	return meta
}
