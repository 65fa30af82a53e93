package models

// TargetKind tags which completion condition a Target tracks.
type TargetKind string

const (
	TargetNone  TargetKind = ""
	TargetProbe TargetKind = "probe"
	TargetTimer TargetKind = "timer"
)

// Target is the cook completion condition currently tracked for a device.
// The zero value is "no target". Probe targets use the temperature fields,
// timer targets use Current/Initial (seconds).
type Target struct {
	Kind              TargetKind   `json:"kind"`
	Temperature       *Temperature `json:"temperature,omitempty"`
	TargetTemperature *Temperature `json:"target_temperature,omitempty"`
	Current           int          `json:"current,omitempty"`
	Initial           int          `json:"initial,omitempty"`
}

func ProbeTarget(current, target *Temperature) Target {
	return Target{Kind: TargetProbe, Temperature: current, TargetTemperature: target}
}

func TimerTarget(current, initial int) Target {
	return Target{Kind: TargetTimer, Current: current, Initial: initial}
}

func (t Target) IsZero() bool { return t.Kind == TargetNone }

// Reached reports whether the target's completion condition holds.
// A probe target needs both readings and current >= target in Celsius.
// A timer target needs both values non-zero and current >= initial.
func (t Target) Reached() bool {
	switch t.Kind {
	case TargetProbe:
		return t.Temperature != nil && t.TargetTemperature != nil &&
			t.Temperature.Celsius() >= t.TargetTemperature.Celsius()
	case TargetTimer:
		return t.Current != 0 && t.Initial != 0 && t.Current >= t.Initial
	default:
		return false
	}
}

// Equal compares kind and the fields relevant to that kind.
func (t Target) Equal(o Target) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TargetProbe:
		return t.Temperature.Equal(o.Temperature) && t.TargetTemperature.Equal(o.TargetTemperature)
	case TargetTimer:
		return t.Current == o.Current && t.Initial == o.Initial
	default:
		return true
	}
}
