package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the runs counter.
const (
	OutcomeOK            = "ok"
	OutcomeResourceError = "resource_error"
	OutcomeFormatError   = "format_error"
)

// Metrics counts driver activity. A nil *Metrics records nothing.
type Metrics struct {
	accepted prometheus.Counter
	skipped  *prometheus.CounterVec
	runs     *prometheus.CounterVec
}

// NewMetrics creates the driver collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "csvfeed",
			Name:      "lines_accepted_total",
			Help:      "Lines forwarded to a consumer.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "csvfeed",
			Name:      "lines_skipped_total",
			Help:      "Blank and comment lines skipped by the driver.",
		}, []string{"reason"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "csvfeed",
			Name:      "runs_total",
			Help:      "Completed ingestion runs by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.accepted, m.skipped, m.runs)
	}
	return m
}

func (m *Metrics) lineAccepted() {
	if m == nil {
		return
	}
	m.accepted.Inc()
}

func (m *Metrics) lineSkipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) runDone(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}
