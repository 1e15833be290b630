package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeApplied  = "applied"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
	OutcomeDegraded = "degraded"
)

// SideEffectMetrics counts auxiliary work that never fails a request:
// reminder mutations and search results degraded to empty.
type SideEffectMetrics struct {
	total *prometheus.CounterVec
}

func NewSideEffectMetrics(reg prometheus.Registerer) *SideEffectMetrics {
	if reg == nil {
		return &SideEffectMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "side_effects_total",
		Help: "Best-effort side effects by kind and outcome.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(total)
	return &SideEffectMetrics{total: total}
}

func (m *SideEffectMetrics) Inc(kind, outcome string) {
	if m == nil || m.total == nil {
		return
	}
	m.total.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}
