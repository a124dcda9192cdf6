package fanout

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for branch execution.
type Metrics struct {
	BranchLatency  *prometheus.HistogramVec
	BranchOutcomes *prometheus.CounterVec
}

// NewMetrics registers fan-out metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BranchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "microflix_fanout_branch_duration_seconds",
			Help:    "Latency of aggregation branches",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"branch"}),
		BranchOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "microflix_fanout_branch_outcomes_total",
			Help: "Aggregation branch outcomes by branch and outcome (success, fallback, failure)",
		}, []string{"branch", "outcome"}),
	}
}

func (m *Metrics) ObserveBranch(branch string, kind Kind, d time.Duration) {
	if m == nil {
		return
	}
	m.BranchLatency.WithLabelValues(branch).Observe(d.Seconds())
	m.BranchOutcomes.WithLabelValues(branch, kind.String()).Inc()
}
