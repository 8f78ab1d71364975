package metrics

import "github.com/prometheus/client_golang/prometheus"

// RefundMetrics counts refund review decisions.
type RefundMetrics struct {
	decisions *prometheus.CounterVec
}

func NewRefundMetrics(reg prometheus.Registerer) *RefundMetrics {
	if reg == nil {
		return &RefundMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_decisions_total",
		Help: "Refund approve/reject decisions by outcome.",
	}, []string{"decision", "result"})
	reg.MustRegister(decisions)
	return &RefundMetrics{decisions: decisions}
}

func (m *RefundMetrics) ObserveDecision(decision, result string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(decision), normalizeLabel(result)).Inc()
}
