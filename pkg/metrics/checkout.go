package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks order placement outcomes and latency.
type CheckoutMetrics struct {
	orders   *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout placement in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(orders, duration)
	return &CheckoutMetrics{orders: orders, duration: duration}
}

// ObserveOrder records one checkout attempt. Result is one of success,
// validation, items_not_saved or error.
func (m *CheckoutMetrics) ObserveOrder(result string, elapsed time.Duration) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(result)).Inc()
	if m.duration != nil {
		m.duration.Observe(elapsed.Seconds())
	}
}
