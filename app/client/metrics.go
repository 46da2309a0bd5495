package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts requests issued against the collection store.
type Metrics struct {
	requests *prometheus.CounterVec
}

// NewMetrics registers the client counters on reg. A nil reg uses a private
// registry so tests can create as many clients as they like.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Metrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "postboard_remote_requests_total",
				Help: "Requests issued against the remote collection store.",
			}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) observe(kind, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind, outcome).Inc()
}
