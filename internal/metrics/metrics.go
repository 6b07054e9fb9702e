// Package metrics exposes the app's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters recorded by the webhook boundary.
type Metrics struct {
	webhookEvents    *prometheus.CounterVec
	pipelineOutcomes *prometheus.CounterVec
}

// New registers the app's collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		webhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentbeats",
			Name:      "webhook_events_total",
			Help:      "Webhook deliveries received, by event type.",
		}, []string{"event"}),
		pipelineOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentbeats",
			Name:      "webhook_outcomes_total",
			Help:      "Terminal outcomes of handled webhook events, by status.",
		}, []string{"event", "status"}),
	}
}

// RecordEvent counts one received webhook delivery.
func (m *Metrics) RecordEvent(event string) {
	m.webhookEvents.WithLabelValues(event).Inc()
}

// RecordOutcome counts the terminal status of one handled event.
func (m *Metrics) RecordOutcome(event, status string) {
	m.pipelineOutcomes.WithLabelValues(event, status).Inc()
}
