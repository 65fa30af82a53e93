package oven

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"anova_oven/internal/logger"
	"anova_oven/internal/metrics"
)

// Connection phases.
const (
	PhaseDisconnected = "disconnected"
	PhaseConnecting   = "connecting"
	PhaseConnected    = "connected"
	PhaseRenewing     = "renewing"
	PhaseStopped      = "stopped"
)

var allPhases = []string{PhaseDisconnected, PhaseConnecting, PhaseConnected, PhaseRenewing, PhaseStopped}

const (
	evDial  = "dial"
	evOpen  = "open"
	evClose = "close"
	evRenew = "renew"
	evStop  = "stop"
)

// lifecycle tracks which phase the session is in.
type lifecycle struct {
	fsm *fsm.FSM
	log *logger.Logger
}

func newLifecycle(log *logger.Logger) *lifecycle {
	l := &lifecycle{log: log}
	l.fsm = fsm.NewFSM(
		PhaseDisconnected,
		fsm.Events{
			{Name: evDial, Src: []string{PhaseDisconnected, PhaseRenewing, PhaseStopped}, Dst: PhaseConnecting},
			{Name: evOpen, Src: []string{PhaseConnecting}, Dst: PhaseConnected},
			{Name: evClose, Src: []string{PhaseConnecting, PhaseConnected}, Dst: PhaseDisconnected},
			{Name: evRenew, Src: []string{PhaseDisconnected}, Dst: PhaseRenewing},
			{Name: evStop, Src: []string{PhaseDisconnected, PhaseConnecting, PhaseConnected, PhaseRenewing}, Dst: PhaseStopped},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				metrics.SetPhase(e.Dst, allPhases)
				l.log.Debugw("phase_changed", "from", e.Src, "to", e.Dst, "event", e.Event)
			},
		},
	)
	metrics.SetPhase(PhaseDisconnected, allPhases)
	return l
}

func (l *lifecycle) fire(ctx context.Context, event string) {
	err := l.fsm.Event(ctx, event)
	if err == nil {
		return
	}
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return
	}
	l.log.Debugw("phase_event_ignored", "event", event, "phase", l.fsm.Current(), "reason", err.Error())
}

func (l *lifecycle) current() string { return l.fsm.Current() }
