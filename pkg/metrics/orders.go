package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// OrderMetrics counts order state transitions.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
}

// NewOrderMetrics registers the order transition counter on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_state_transitions_total",
		Help: "Order state transitions by source state, target state and outcome.",
	}, []string{"from", "to", "result"})
	reg.MustRegister(transitions)
	return &OrderMetrics{transitions: transitions}
}

// ObserveTransition records a transition attempt.
func (m *OrderMetrics) ObserveTransition(from, to, result string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to), normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
