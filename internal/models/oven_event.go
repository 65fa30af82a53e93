package models

import "time"

// Event types recorded in the event log.
const (
	EventDeviceDiscovered = "DEVICE_DISCOVERED"
	EventTargetReached    = "COOK_TARGET_REACHED"
	EventTokenRefreshed   = "TOKEN_REFRESHED"
	EventCookStarted      = "COOK_STARTED"
	EventCookStopped      = "COOK_STOPPED"
	EventCommandFailed    = "COMMAND_FAILED"
)

// OvenEvent is a single event log entry.
type OvenEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	CookerID    string    `json:"cooker_id,omitempty"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
