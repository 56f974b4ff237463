package shopping

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records aggregation outcomes. A nil *Metrics is a valid no-op.
type Metrics struct {
	aggregations *prometheus.CounterVec
	duration     prometheus.Histogram
	lines        prometheus.Histogram
}

// NewMetrics registers the shopping collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "familymeal",
			Subsystem: "shopping",
			Name:      "aggregations_total",
			Help:      "Shopping list aggregations by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "familymeal",
			Subsystem: "shopping",
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent building a shopping list, catalog lookups included.",
			Buckets:   prometheus.DefBuckets,
		}),
		lines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "familymeal",
			Subsystem: "shopping",
			Name:      "lines_per_list",
			Help:      "Number of merged lines per generated list.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80},
		}),
	}
	reg.MustRegister(m.aggregations, m.duration, m.lines)
	return m
}

func (m *Metrics) observe(result string, started time.Time, lines int) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(result).Inc()
	m.duration.Observe(time.Since(started).Seconds())
	if result == "ok" {
		m.lines.Observe(float64(lines))
	}
}
