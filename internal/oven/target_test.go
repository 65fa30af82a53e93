package oven

import (
	"testing"

	"anova_oven/internal/models"
)

func probeState(cur, target *models.Temperature) *models.State {
	return &models.State{Nodes: models.Nodes{
		TemperatureProbe: &models.TemperatureProbe{Temperature: cur, TargetTemperature: target},
		Timer:            &models.Timer{Initial: 600, Current: 30},
	}}
}

func timerState(current, initial int) *models.State {
	return &models.State{Nodes: models.Nodes{Timer: &models.Timer{Current: current, Initial: initial}}}
}

func TestDeriveTarget(t *testing.T) {
	c := models.NewTemperature
	tests := []struct {
		name string
		st   *models.State
		want models.Target
	}{
		{"nil state", nil, models.Target{}},
		{"no probe no timer", &models.State{}, models.Target{}},
		{"probe wins over timer", probeState(c(40), c(55)), models.ProbeTarget(c(40), c(55))},
		{"probe target without reading", probeState(nil, c(55)), models.ProbeTarget(nil, c(55))},
		{"probe without target falls back to timer", probeState(c(40), nil), models.TimerTarget(30, 600)},
		{"timer", timerState(10, 60), models.TimerTarget(10, 60)},
		{"timer without initial", timerState(10, 0), models.Target{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTarget(tt.st); !got.Equal(tt.want) {
				t.Fatalf("DeriveTarget = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNextTarget(t *testing.T) {
	c := models.NewTemperature
	reachedProbe := models.ProbeTarget(c(56), c(55))
	unreachedProbe := models.ProbeTarget(c(50), c(55))
	reachedTimer := models.TimerTarget(60, 60)

	tests := []struct {
		name   string
		prev   models.Target
		st     *models.State
		notify bool
	}{
		{"reached probe then absent", reachedProbe, &models.State{}, true},
		{"reached probe replaced by timer", reachedProbe, timerState(0, 60), true},
		{"reached probe keeps climbing", reachedProbe, probeState(c(57), c(55)), true},
		{"reached probe unchanged", reachedProbe, probeState(c(56), c(55)), false},
		{"unreached probe persists", unreachedProbe, probeState(c(50), c(55)), false},
		{"unreached probe heats up", unreachedProbe, probeState(c(54), c(55)), false},
		{"unreached probe becomes reached", unreachedProbe, probeState(c(55), c(55)), false},
		{"unreached probe removed", unreachedProbe, &models.State{}, false},
		{"reached timer then absent", reachedTimer, &models.State{}, true},
		{"no target stays absent", models.Target{}, &models.State{}, false},
		{"target appears", models.Target{}, timerState(0, 60), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, notify := NextTarget(tt.prev, tt.st)
			if notify != tt.notify {
				t.Fatalf("notify = %v, want %v", notify, tt.notify)
			}
			if want := DeriveTarget(tt.st); !cur.Equal(want) {
				t.Fatalf("target = %+v, want %+v", cur, want)
			}
		})
	}
}
