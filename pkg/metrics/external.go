package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExternalCallMetrics records calls to third-party providers (recipe search,
// task and calendar reminders).
type ExternalCallMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewExternalCallMetrics registers the provider metrics on the provided registerer.
func NewExternalCallMetrics(reg prometheus.Registerer) *ExternalCallMetrics {
	if reg == nil {
		return &ExternalCallMetrics{}
	}
	labels := []string{"provider", "operation"}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "external_call_duration_seconds",
		Help:    "Duration of outbound provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, labels)
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "external_call_success",
		Help: "Successful outbound provider calls.",
	}, labels)
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "external_call_failure",
		Help: "Failed outbound provider calls.",
	}, labels)
	reg.MustRegister(duration, success, failure)
	return &ExternalCallMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// Observe records one call and its outcome.
func (m *ExternalCallMetrics) Observe(provider, operation string, duration time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	provider, operation = normalizeLabel(provider), normalizeLabel(operation)
	m.duration.WithLabelValues(provider, operation).Observe(duration.Seconds())
	if err != nil {
		m.failure.WithLabelValues(provider, operation).Inc()
		return
	}
	m.success.WithLabelValues(provider, operation).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
