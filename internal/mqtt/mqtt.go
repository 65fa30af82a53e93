// Package mqtt mirrors device state and oven events onto an MQTT broker.
package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"anova_oven/internal/models"
)

// DefaultTopicRoot prefixes every topic when none is configured.
const DefaultTopicRoot = "anova/oven"

// Publisher publishes device state and events.
type Publisher interface {
	// PublishState sends the latest snapshot of a device (retained).
	PublishState(device models.Device) error

	// PublishEvent sends an event log entry.
	PublishEvent(event models.OvenEvent) error

	// Close disconnects from the broker.
	Close() error
}

// StateTopic is <root>/<cooker_id>/state.
func StateTopic(root, cookerID string) string {
	return topic(root, cookerID, "state")
}

// EventTopic is <root>/<cooker_id>/events; events without a device go to <root>/events.
func EventTopic(root, cookerID string) string {
	if cookerID == "" {
		return strings.TrimRight(rootOrDefault(root), "/") + "/events"
	}
	return topic(root, cookerID, "events")
}

func topic(root, cookerID, leaf string) string {
	return strings.TrimRight(rootOrDefault(root), "/") + "/" + cookerID + "/" + leaf
}

func rootOrDefault(root string) string {
	if strings.TrimSpace(root) == "" {
		return DefaultTopicRoot
	}
	return root
}

// StatePayload is the JSON body of a state message.
type StatePayload struct {
	CookerID  string        `json:"cooker_id"`
	Type      string        `json:"type"`
	Timestamp string        `json:"timestamp"`
	Mode      string        `json:"mode"`
	ModeLabel string        `json:"mode_label"`
	State     *models.State `json:"state"`
}

// FormatStatePayload creates the JSON payload for a device snapshot.
func FormatStatePayload(device models.Device) ([]byte, error) {
	p := StatePayload{
		CookerID: device.CookerID,
		Type:     device.Type,
		State:    device.State,
	}
	ts := time.Now()
	if device.State != nil {
		p.Mode = device.State.Mode
		p.ModeLabel = models.ModeLabel(device.State.Mode)
		if !device.State.ReceivedAt.IsZero() {
			ts = device.State.ReceivedAt
		}
	}
	p.Timestamp = ts.UTC().Format(time.RFC3339)
	return json.Marshal(p)
}

// EventPayload is the JSON body of an event message.
type EventPayload struct {
	EventID     string `json:"event_id"`
	Timestamp   string `json:"timestamp"`
	CookerID    string `json:"cooker_id,omitempty"`
	Event       string `json:"event"`
	Description string `json:"description"`
	Metadata    any    `json:"metadata,omitempty"`
}

// FormatEventPayload creates the JSON payload for an event.
func FormatEventPayload(e models.OvenEvent) ([]byte, error) {
	return json.Marshal(EventPayload{
		EventID:     e.EventID,
		Timestamp:   e.OccurredAt.UTC().Format(time.RFC3339),
		CookerID:    e.CookerID,
		Event:       e.Type,
		Description: e.Description,
		Metadata:    e.Metadata,
	})
}
