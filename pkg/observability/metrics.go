// Package observability exports machine activity as Prometheus metrics. The
// Metrics observer plugs into espalier.WithObserver and counts every
// committed transition.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/espalier"
)

// Metrics bundles the collectors for one machine.
type Metrics struct {
	transitions *prometheus.CounterVec
	subStates   prometheus.Counter
}

// NewMetrics creates the collectors. They still need to be registered, either
// via Register or directly with a prometheus.Registerer.
func NewMetrics() *Metrics {
	return &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_transitions_total",
				Help: "Total number of committed state transitions",
			},
			[]string{"from", "to", "event"},
		),
		subStates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "espalier_substate_transitions_total",
				Help: "Committed transitions that stayed within the destination's subtree",
			},
		),
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns the underlying collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.transitions, m.subStates}
}

// Observer returns the change observer to pass to espalier.WithObserver. The
// construction-time notification is not counted as a transition.
func (m *Metrics) Observer() func(espalier.Change[string, string]) {
	return func(c espalier.Change[string, string]) {
		if c.Initial {
			return
		}
		m.transitions.WithLabelValues(c.From, c.To, c.Event).Inc()
		if c.IsSubState {
			m.subStates.Inc()
		}
	}
}
