package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"anova_oven/internal/logger"
	"anova_oven/internal/models"
	"anova_oven/internal/mqtt"
	"anova_oven/internal/repository"
)

// eventRecorder appends to the event log and mirrors each entry to MQTT.
type eventRecorder struct {
	repo repository.EventRepo
	pub  mqtt.Publisher
	log  *logger.Logger
	now  func() time.Time
}

func newEventRecorder(repo repository.EventRepo, pub mqtt.Publisher, log *logger.Logger) *eventRecorder {
	return &eventRecorder{repo: repo, pub: pub, log: log, now: time.Now}
}

// record persists e; a failed MQTT publish is only logged.
func (r *eventRecorder) record(ctx context.Context, e models.OvenEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.now().UTC()
	}
	if err := r.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("append %s event: %w", e.Type, err)
	}
	if err := r.pub.PublishEvent(e); err != nil {
		r.log.Warnw("mqtt_publish_failed", "event", e.Type, "cooker_id", e.CookerID, "err", err)
	}
	return nil
}
