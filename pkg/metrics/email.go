package metrics

import "github.com/prometheus/client_golang/prometheus"

// EmailMetrics counts transactional email sends per template.
type EmailMetrics struct {
	sent *prometheus.CounterVec
}

func NewEmailMetrics(reg prometheus.Registerer) *EmailMetrics {
	if reg == nil {
		return &EmailMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Transactional email attempts by template and outcome.",
	}, []string{"template", "result"})
	reg.MustRegister(sent)
	return &EmailMetrics{sent: sent}
}

func (m *EmailMetrics) ObserveSend(template, result string) {
	if m == nil || m.sent == nil {
		return
	}
	m.sent.WithLabelValues(normalizeLabel(template), normalizeLabel(result)).Inc()
}
