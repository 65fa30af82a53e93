package models

import (
	"errors"
	"fmt"
	"math"

	"anova_oven/internal/codec"

	"github.com/google/uuid"
)

// StageType distinguishes the preheat phase from the cook phase.
type StageType string

const (
	StagePreheat StageType = "preheat"
	StageCook    StageType = "cook"
)

// Stage is one step of a cook program as sent in CMD_APO_START. Optional
// parts are pointers; nil ones are left out of the wire payload.
type Stage struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Type               StageType        `json:"type"`
	StepType           string           `json:"step_type"`
	Description        string           `json:"description"`
	UserActionRequired bool             `json:"user_action_required"`
	TemperatureBulbs   BulbSetpoints    `json:"temperature_bulbs"`
	HeatingElements    HeatingElements  `json:"heating_elements"`
	Fan                Fan              `json:"fan"`
	Vent               Vent             `json:"vent"`
	RackPosition       int              `json:"rack_position"`
	SteamGenerators    *SteamGenerators `json:"steam_generators"`
	TimerAdded         bool             `json:"timer_added"`
	Timer              *StageTimer      `json:"timer"`
	ProbeAdded         bool             `json:"probe_added"`
	TemperatureProbe   *ProbeSetpoint   `json:"temperature_probe"`
}

type TemperatureSetpoint struct {
	Celsius    float64 `json:"celsius"`
	Fahrenheit int     `json:"fahrenheit"`
}

type BulbSetpoint struct {
	Setpoint TemperatureSetpoint `json:"setpoint"`
}

// BulbSetpoints holds exactly one of Dry or Wet, matching Mode.
type BulbSetpoints struct {
	Mode string        `json:"mode"`
	Dry  *BulbSetpoint `json:"dry"`
	Wet  *BulbSetpoint `json:"wet"`
}

type Switch struct {
	On bool `json:"on"`
}

type HeatingElements struct {
	Bottom Switch `json:"bottom"`
	Top    Switch `json:"top"`
	Rear   Switch `json:"rear"`
}

type Fan struct {
	Speed int `json:"speed"`
}

type Vent struct {
	Open bool `json:"open"`
}

type StageTimer struct {
	Initial int `json:"initial"`
}

type ProbeSetpoint struct {
	Setpoint *TemperatureSetpoint `json:"setpoint"`
}

type HumiditySetpoint struct {
	Setpoint int `json:"setpoint"`
}

// Steam generator modes.
const (
	SteamModeRelativeHumidity = "relative-humidity"
	SteamModeSteamPercentage  = "steam-percentage"
)

// SteamGenerators holds exactly one of RelativeHumidity or SteamPercentage, matching Mode.
type SteamGenerators struct {
	Mode             string            `json:"mode"`
	RelativeHumidity *HumiditySetpoint `json:"relative_humidity"`
	SteamPercentage  *HumiditySetpoint `json:"steam_percentage"`
}

// TemperatureUnit selects the scale cook parameters are expressed in.
type TemperatureUnit string

const (
	UnitCelsius    TemperatureUnit = "C"
	UnitFahrenheit TemperatureUnit = "F"
)

// TimerMode controls when the timer starts and whether a preheat stage is added.
type TimerMode string

const (
	TimerImmediately   TimerMode = "immediately"
	TimerWhenPreheated TimerMode = "when_preheated"
	TimerManually      TimerMode = "manually"
)

// Fixed stage settings.
const (
	DefaultFanSpeed       = 100
	DefaultRackPosition   = 3
	sousVideMaxCelsius    = 100.0
	sousVideMaxFahrenheit = 212.0
	sousVideHumidity      = 100
)

// ErrInvalidProgram wraps every cook parameter validation failure.
var ErrInvalidProgram = errors.New("invalid cook program")

// CookParams are the user-facing inputs of a cook. Temperatures are in Unit.
type CookParams struct {
	Unit              TemperatureUnit `json:"unit"`
	TargetTemperature *float64        `json:"target_temperature"`
	ProbeTemperature  *float64        `json:"probe_temperature"`
	TimerSeconds      *int            `json:"timer_seconds"`
	TimerMode         TimerMode       `json:"timer_mode"`
	SousVide          bool            `json:"sous_vide"`
	HeatingTop        bool            `json:"heating_top"`
	HeatingBottom     bool            `json:"heating_bottom"`
	HeatingRear       *bool           `json:"heating_rear"` // defaults to on
	TargetHumidity    *int            `json:"target_humidity"`
}

// NewCookProgram turns cook parameters into the ordered stage list of a
// CMD_APO_START: an optional preheat stage followed by the cook stage. The
// cook stage copies the preheat settings, gets its own id and carries the
// timer. Stage ids are prefixed with platform.
func NewCookProgram(p CookParams, platform string) ([]Stage, error) {
	if p.TimerSeconds != nil && p.ProbeTemperature != nil {
		return nil, fmt.Errorf("%w: only probe or timer can be set, not both", ErrInvalidProgram)
	}
	if p.TargetTemperature == nil {
		return nil, fmt.Errorf("%w: target temperature is required", ErrInvalidProgram)
	}
	if p.TimerSeconds != nil && *p.TimerSeconds <= 0 {
		return nil, fmt.Errorf("%w: timer must be positive", ErrInvalidProgram)
	}

	target, err := setpoint(p.Unit, *p.TargetTemperature)
	if err != nil {
		return nil, err
	}
	if p.SousVide && target.Celsius > sousVideMaxCelsius {
		if p.Unit == UnitFahrenheit {
			return nil, fmt.Errorf("%w: target temperature could not exceed %.0f°F in sous vide mode", ErrInvalidProgram, sousVideMaxFahrenheit)
		}
		return nil, fmt.Errorf("%w: target temperature could not exceed %.0f°C in sous vide mode", ErrInvalidProgram, sousVideMaxCelsius)
	}

	var probe *TemperatureSetpoint
	if p.ProbeTemperature != nil && *p.ProbeTemperature != 0 {
		sp, err := setpoint(p.Unit, *p.ProbeTemperature)
		if err != nil {
			return nil, err
		}
		probe = &sp
	}

	var preheatRequired, userAction bool
	switch p.TimerMode {
	case "", TimerImmediately:
	case TimerWhenPreheated:
		preheatRequired = true
	case TimerManually:
		preheatRequired = true
		userAction = true
	default:
		return nil, fmt.Errorf("%w: unknown timer mode %q", ErrInvalidProgram, p.TimerMode)
	}

	rear := true
	if p.HeatingRear != nil {
		rear = *p.HeatingRear
	}

	preheat := Stage{
		ID:                 NewPlatformID(platform),
		Type:               StagePreheat,
		StepType:           "stage",
		UserActionRequired: userAction,
		TemperatureBulbs:   bulbSetpoints(p.SousVide, target),
		HeatingElements: HeatingElements{
			Bottom: Switch{On: p.HeatingBottom},
			Top:    Switch{On: p.HeatingTop},
			Rear:   Switch{On: rear},
		},
		Fan:             Fan{Speed: DefaultFanSpeed},
		Vent:            Vent{Open: false},
		RackPosition:    DefaultRackPosition,
		SteamGenerators: steamGenerators(p.SousVide, p.TargetHumidity),
		ProbeAdded:      probe != nil,
	}
	if probe != nil {
		preheat.TemperatureProbe = &ProbeSetpoint{Setpoint: probe}
	}

	cook := preheat
	cook.ID = NewPlatformID(platform)
	cook.Type = StageCook
	if p.TimerSeconds != nil {
		cook.TimerAdded = true
		cook.Timer = &StageTimer{Initial: *p.TimerSeconds}
	}

	if preheatRequired {
		return []Stage{preheat, cook}, nil
	}
	return []Stage{cook}, nil
}

// NewPlatformID returns a fresh "<platform>-<uuid>" identifier.
func NewPlatformID(platform string) string {
	return platform + "-" + uuid.NewString()
}

func setpoint(unit TemperatureUnit, v float64) (TemperatureSetpoint, error) {
	switch unit {
	case "", UnitCelsius:
		return TemperatureSetpoint{Celsius: v, Fahrenheit: codec.ToFahrenheit(v)}, nil
	case UnitFahrenheit:
		return TemperatureSetpoint{Celsius: codec.ToCelsius(v), Fahrenheit: int(math.Round(v))}, nil
	default:
		return TemperatureSetpoint{}, fmt.Errorf("%w: unknown temperature unit %q", ErrInvalidProgram, unit)
	}
}

func bulbSetpoints(sousVide bool, sp TemperatureSetpoint) BulbSetpoints {
	if sousVide {
		return BulbSetpoints{Mode: BulbModeWet, Wet: &BulbSetpoint{Setpoint: sp}}
	}
	return BulbSetpoints{Mode: BulbModeDry, Dry: &BulbSetpoint{Setpoint: sp}}
}

func steamGenerators(sousVide bool, humidity *int) *SteamGenerators {
	if sousVide {
		h := sousVideHumidity
		if humidity != nil {
			h = *humidity
		}
		return &SteamGenerators{Mode: SteamModeRelativeHumidity, RelativeHumidity: &HumiditySetpoint{Setpoint: h}}
	}
	h := 0
	if humidity != nil {
		h = *humidity
	}
	return &SteamGenerators{Mode: SteamModeSteamPercentage, SteamPercentage: &HumiditySetpoint{Setpoint: h}}
}
