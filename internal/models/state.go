package models

import "time"

// State is one decoded EVENT_APO_STATE snapshot. Snapshots are never mutated
// after decoding; a newer event replaces the whole value.
type State struct {
	Mode            string        `json:"mode"`
	FirmwareVersion string        `json:"firmware_version"`
	Nodes           Nodes         `json:"nodes"`
	Stages          StageProgress `json:"stages"`
	RawStages       string        `json:"raw_stages"`
	ReceivedAt      time.Time     `json:"received_at"`
}

// StageProgress summarizes the running cook program.
type StageProgress struct {
	Active *int `json:"active,omitempty"` // 1-based; nil when no stage is active
	Count  int  `json:"count"`
}

type Nodes struct {
	Cook             CookProgress      `json:"cook"`
	Timer            *Timer            `json:"timer,omitempty"`
	TemperatureBulbs TemperatureBulbs  `json:"temperature_bulbs"`
	TemperatureProbe *TemperatureProbe `json:"temperature_probe,omitempty"`
	RearHeating      HeatingElement    `json:"rear_heating"`
	BottomHeating    HeatingElement    `json:"bottom_heating"`
	TopHeating       HeatingElement    `json:"top_heating"`
	SteamGenerator   SteamGenerator    `json:"steam_generator"`
	LampOn           bool              `json:"lamp_on"`
	DoorClosed       bool              `json:"door_closed"`
	WaterTankEmpty   bool              `json:"water_tank_empty"`
	FanSpeed         int               `json:"fan_speed"`
}

type CookProgress struct {
	SecondsElapsed int `json:"seconds_elapsed"`
}

// Timer values are in seconds; zero means the gateway did not report the field.
type Timer struct {
	Mode    string `json:"mode"`
	Initial int    `json:"initial"`
	Current int    `json:"current"`
}

// Bulb modes.
const (
	BulbModeDry = "dry"
	BulbModeWet = "wet"
)

type TemperatureBulbs struct {
	Mode              string       `json:"mode"` // dry | wet
	Temperature       *Temperature `json:"temperature,omitempty"`
	TargetTemperature *Temperature `json:"target_temperature,omitempty"`
	Dosed             bool         `json:"dosed"`
	DoseFailed        bool         `json:"dose_failed"`
}

type TemperatureProbe struct {
	Temperature       *Temperature `json:"temperature,omitempty"`
	TargetTemperature *Temperature `json:"target_temperature,omitempty"`
}

type HeatingElement struct {
	Watts int  `json:"watts"`
	On    bool `json:"on"`
}

type SteamGenerator struct {
	Mode             string   `json:"mode"`
	RelativeHumidity *float64 `json:"relative_humidity,omitempty"`
	TargetHumidity   float64  `json:"target_humidity"`
}

var modeLabels = map[string]string{
	"IDLE":      "Idle",
	"COOK":      "Cook",
	"LOW WATER": "Low water",
}

// ModeLabel returns a display label for an oven mode, or the raw mode when unknown.
func ModeLabel(mode string) string {
	if l, ok := modeLabels[mode]; ok {
		return l
	}
	return mode
}
