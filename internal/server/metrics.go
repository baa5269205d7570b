package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects the service's prometheus counters.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	ComparisonsTotal prometheus.Counter
	ParseFallbacks   prometheus.Counter
}

// NewMetrics creates and registers the counters on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ethoscope_analyses_total",
			Help: "Completed ethical analyses by model and status.",
		}, []string{"model", "status"}),
		ComparisonsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ethoscope_comparisons_total",
			Help: "Completed multi-model comparisons.",
		}),
		ParseFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ethoscope_parse_fallbacks_total",
			Help: "Analyses whose scoring block failed to parse.",
		}),
	}
	reg.MustRegister(m.AnalysesTotal, m.ComparisonsTotal, m.ParseFallbacks)
	return m
}
