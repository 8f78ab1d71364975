package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles every collector the API records into one registry.
type Set struct {
	Registry *prometheus.Registry
	HTTP     *HTTPMetrics
	Checkout *CheckoutMetrics
	Orders   *OrderMetrics
	Refunds  *RefundMetrics
	Email    *EmailMetrics
}

// NewSet registers the domain collectors plus the Go runtime and process collectors.
func NewSet() *Set {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Set{
		Registry: reg,
		HTTP:     NewHTTPMetrics(reg),
		Checkout: NewCheckoutMetrics(reg),
		Orders:   NewOrderMetrics(reg),
		Refunds:  NewRefundMetrics(reg),
		Email:    NewEmailMetrics(reg),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (s *Set) Handler() http.Handler {
	if s == nil || s.Registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{Registry: s.Registry})
}
