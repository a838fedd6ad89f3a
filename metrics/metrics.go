package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// OrdersSubmitted counts orders handed to the broker gateway, labeled by
	// the order's tag (a zone name, RISKY_OSC, or the SWING_* tag of a
	// reversal, risky-init or stop order).
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swing_orders_submitted_total",
			Help: "Total number of orders submitted, by context.",
		},
		[]string{"ctx"},
	)

	// StateTransitions counts SwingStateMachine transitions, labeled by the
	// from/to state pair.
	StateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swing_state_transitions_total",
			Help: "Total number of swing state machine transitions.",
		},
		[]string{"from", "to"},
	)

	// KBumps counts GridOscillator offset-scale increments, labeled by zone tag.
	KBumps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swing_k_bumps_total",
			Help: "Total number of grid oscillator k-scale increments, by zone.",
		},
		[]string{"zone"},
	)

	// NLV reports the current net liquidation value the state machine is
	// tracking.
	NLV = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swing_nlv",
			Help: "Current net liquidation value tracked by the state machine.",
		},
	)

	// Gain reports the current unrealized + realized gain since start.
	Gain = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swing_gain",
			Help: "Current gain since strategy start.",
		},
	)
)

func init() {
	prometheus.MustRegister(OrdersSubmitted, StateTransitions, KBumps, NLV, Gain)
}
