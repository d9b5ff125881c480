package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "goal_engine"

// Metrics exposes the calculation instruments. A nil *Metrics records nothing.
type Metrics struct {
	breakdowns  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rateLimited prometheus.Counter
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		breakdowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breakdowns_total",
			Help:      "Goal breakdown calculations by vertical, calculation path and outcome.",
		}, []string{"vertical", "path", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "breakdown_duration_seconds",
			Help:      "Time spent computing a goal breakdown.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"path"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	for _, c := range []prometheus.Collector{m.breakdowns, m.duration, m.rateLimited} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveBreakdown records one calculation. path is empty for calculations
// rejected before reaching an adapter.
func (m *Metrics) ObserveBreakdown(vertical, path, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if path == "" {
		path = "rejected"
	}
	m.breakdowns.WithLabelValues(vertical, path, outcome).Inc()
	m.duration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
