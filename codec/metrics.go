package codec

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the blocks processed by codecs and times their batches.
type Metrics struct {
	Blocks   *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the codec collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fec",
			Name:      "blocks_total",
			Help:      "Number of blocks processed",
		}, []string{"family", "operation"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fec",
			Name:      "validation_failures_total",
			Help:      "Number of calls rejected before processing",
		}, []string{"family", "operation"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fec",
			Name:      "batch_duration_seconds",
			Help:      "Time spent processing one batch",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"family", "operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.Blocks, m.Failures, m.Duration)
	}
	return m
}

func (m *Metrics) observe(family Family, operation string, blocks int, start time.Time) {
	if m == nil {
		return
	}
	m.Blocks.WithLabelValues(string(family), operation).Add(float64(blocks))
	m.Duration.WithLabelValues(string(family), operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) fail(family Family, operation string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(string(family), operation).Inc()
}
