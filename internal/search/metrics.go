package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts search work on a Prometheus registry. A nil *Metrics
// records nothing.
//
// Counters are updated once per run, not per candidate.
type Metrics struct {
	evaluated *prometheus.CounterVec
	inserted  *prometheus.CounterVec
	runs      *prometheus.CounterVec
	restarts  prometheus.Counter
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the search metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		evaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kaiser",
			Name:      "candidates_evaluated_total",
			Help:      "Trial decryptions scored",
		}, []string{"engine"}),
		inserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kaiser",
			Name:      "frontier_inserts_total",
			Help:      "Candidates admitted to a result frontier",
		}, []string{"engine"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kaiser",
			Name:      "search_runs_total",
			Help:      "Search runs completed or interrupted",
		}, []string{"engine"}),
		restarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kaiser",
			Name:      "hillclimb_restarts_total",
			Help:      "Hill climbs restarted from a fresh random key",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kaiser",
			Name:      "search_duration_seconds",
			Help:      "Wall time of a search run",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"engine"}),
	}
}

func (m *Metrics) observeRun(engine string, evaluated, inserted int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.evaluated.WithLabelValues(engine).Add(float64(evaluated))
	m.inserted.WithLabelValues(engine).Add(float64(inserted))
	m.runs.WithLabelValues(engine).Inc()
	m.duration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRestart() {
	if m == nil {
		return
	}
	m.restarts.Inc()
}
