package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons.
const (
	DropNoFlow       = "no_flow"
	DropUnsupported  = "unsupported"
	DropInvalidInput = "invalid_input"
	DropNoGroup      = "no_group"
)

// Metrics holds the bot's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Events      *prometheus.CounterVec
	Dropped     *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	StoreOps    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grouplog_events_total",
				Help: "Total number of webhook events dispatched, by kind",
			},
			[]string{"kind"},
		),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grouplog_events_dropped_total",
				Help: "Events dropped without a state change, by reason",
			},
			[]string{"reason"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grouplog_transitions_total",
				Help: "Flow state transitions persisted",
			},
			[]string{"from", "to"},
		),
		StoreOps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grouplog_store_operation_duration_seconds",
				Help:    "Duration of store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "outcome"},
		),
	}
	reg.MustRegister(m.Events, m.Dropped, m.Transitions, m.StoreOps)
	return m
}

// Event counts one dispatched event.
func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(kind).Inc()
}

// Drop counts one dropped event.
func (m *Metrics) Drop(reason string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(reason).Inc()
}

// Transition counts one persisted flow change.
func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// ObserveStore records the duration of one store call.
func (m *Metrics) ObserveStore(op string, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreOps.WithLabelValues(op, outcome).Observe(seconds)
}
