// Package metrics holds the prometheus collectors of the gateway session.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ConnectionPhase is 1 for the session's current lifecycle phase and 0 for the others.
	ConnectionPhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "anova_connection_phase",
			Help: "Current gateway session phase (1 = active phase).",
		},
		[]string{"phase"},
	)

	FramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anova_frames_total",
			Help: "Inbound gateway frames by command.",
		},
		[]string{"command"},
	)

	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anova_commands_total",
			Help: "Outbound commands by result.",
		},
		[]string{"command", "status"}, // status: ok/error/timeout/failed
	)

	CommandLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anova_command_latency_seconds",
			Help:    "Time from sending a command to its correlated response.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	ReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anova_reconnects_total",
			Help: "Gateway reconnects after a transport closure.",
		},
	)

	TokenRenewalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anova_token_renewals_total",
			Help: "Access token renewals by result.",
		},
		[]string{"status"},
	)

	TargetReachedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anova_target_reached_total",
			Help: "Cook target reached notifications.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ConnectionPhase,
		FramesTotal,
		CommandsTotal,
		CommandLatency,
		ReconnectsTotal,
		TokenRenewalsTotal,
		TargetReachedTotal,
	)
}

// SetPhase marks phase as the active one among all known phases.
func SetPhase(phase string, all []string) {
	for _, p := range all {
		v := 0.0
		if p == phase {
			v = 1
		}
		ConnectionPhase.WithLabelValues(p).Set(v)
	}
}
