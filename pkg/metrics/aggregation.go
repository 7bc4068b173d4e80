package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AggregationMetrics records cart aggregation passes.
type AggregationMetrics struct {
	duration   *prometheus.HistogramVec
	skipped    *prometheus.CounterVec
	superseded prometheus.Counter
	subtotal   prometheus.Gauge
	savings    prometheus.Gauge
}

// NewAggregationMetrics registers the aggregation metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewAggregationMetrics(reg prometheus.Registerer) *AggregationMetrics {
	if reg == nil {
		return &AggregationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_aggregation_duration_seconds",
		Help:    "Duration of cart aggregation passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_aggregation_skipped_lines_total",
		Help: "Cart lines left out of totals, by reason.",
	}, []string{"reason"})
	superseded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_aggregation_superseded_total",
		Help: "Aggregation results dropped because a newer pass was already published or the pass was cancelled.",
	})
	subtotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_last_subtotal",
		Help: "Subtotal of the last published aggregation.",
	})
	savings := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_last_savings",
		Help: "Savings of the last published aggregation.",
	})
	reg.MustRegister(duration, skipped, superseded, subtotal, savings)
	return &AggregationMetrics{
		duration:   duration,
		skipped:    skipped,
		superseded: superseded,
		subtotal:   subtotal,
		savings:    savings,
	}
}

// ObserveDuration records the duration of a pass started by trigger.
func (m *AggregationMetrics) ObserveDuration(trigger string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncSkipped counts a line left out of the totals.
func (m *AggregationMetrics) IncSkipped(reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncSuperseded counts a stale pass result that was not published.
func (m *AggregationMetrics) IncSuperseded() {
	if m == nil || m.superseded == nil {
		return
	}
	m.superseded.Inc()
}

// SetLastTotals records the figures of the last published result.
func (m *AggregationMetrics) SetLastTotals(subtotal, savings float64) {
	if m == nil || m.subtotal == nil {
		return
	}
	m.subtotal.Set(subtotal)
	m.savings.Set(savings)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
