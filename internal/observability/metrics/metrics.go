package metrics

import "github.com/prometheus/client_golang/prometheus"

// RoutingMetrics exposes counters/histograms for the helpline routing flow.
type RoutingMetrics struct {
	inboundTotal         *prometheus.CounterVec
	classificationsTotal *prometheus.CounterVec
	repliesTotal         *prometheus.CounterVec
	alertsTotal          *prometheus.CounterVec
	webhookLatency       prometheus.Histogram
}

func NewRoutingMetrics(reg prometheus.Registerer) *RoutingMetrics {
	m := &RoutingMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpline",
			Subsystem: "messaging",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhooks",
		}, []string{"status"}),
		classificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpline",
			Subsystem: "routing",
			Name:      "classifications_total",
			Help:      "Topic classification outcomes",
		}, []string{"topic"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpline",
			Subsystem: "routing",
			Name:      "replies_total",
			Help:      "Outbound reply attempts by kind and status",
		}, []string{"kind", "status"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpline",
			Subsystem: "routing",
			Name:      "emergency_alerts_total",
			Help:      "Emergency alert send attempts",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "helpline",
			Subsystem: "messaging",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound webhook processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.classificationsTotal, m.repliesTotal, m.alertsTotal, m.webhookLatency)
	return m
}

func (m *RoutingMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *RoutingMetrics) ObserveClassification(topic string) {
	if m == nil {
		return
	}
	m.classificationsTotal.WithLabelValues(topic).Inc()
}

func (m *RoutingMetrics) ObserveReply(kind, status string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(kind, status).Inc()
}

func (m *RoutingMetrics) ObserveAlert(status string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(status).Inc()
}

func (m *RoutingMetrics) ObserveWebhookLatency(seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.Observe(seconds)
}
