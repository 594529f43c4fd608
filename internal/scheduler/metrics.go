package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes Prometheus instrumentation for the solve pipeline,
// following the same registration pattern as the rest of the host
// application's HTTP-facing metrics.
type Metrics struct {
	solveDuration *prometheus.HistogramVec
	fillRate      prometheus.Histogram
	solveTotal    *prometheus.CounterVec
}

// NewMetrics registers the scheduler's collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduler_solve_duration_seconds",
			Help:    "Wall-clock duration of a single solve call, by strategy.",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy"}),
		fillRate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_fill_rate",
			Help:    "Fraction of requested minutes assigned by the returned SolveResult.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		solveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_solve_total",
			Help: "Number of solve calls, by strategy.",
		}, []string{"strategy"}),
	}
	reg.MustRegister(m.solveDuration, m.fillRate, m.solveTotal)
	return m
}

// Observe records one solve's outcome against the given strategy label
// ("greedy_retry", "grasp", "genetic", "relax_cp", or "orchestrated").
func (m *Metrics) Observe(strategy string, result *SolveResult) {
	if m == nil || result == nil {
		return
	}
	m.solveDuration.WithLabelValues(strategy).Observe(result.PerformanceMetrics.RuntimeSeconds)
	m.fillRate.Observe(result.PerformanceMetrics.FillRate)
	m.solveTotal.WithLabelValues(strategy).Inc()
}
