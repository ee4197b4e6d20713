package metrics

import "github.com/prometheus/client_golang/prometheus"

// OutboxMetrics tracks publisher throughput and terminal failures.
type OutboxMetrics struct {
	published    *prometheus.CounterVec
	retried      *prometheus.CounterVec
	deadLettered *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "outbox",
		Name:      "events_published",
		Help:      "Outbox events published to Pub/Sub.",
	}, []string{"event_type"})
	retried := prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "outbox",
		Name:      "events_retried",
		Help:      "Outbox publish attempts that failed and were scheduled for retry.",
	}, []string{"event_type"})
	deadLettered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "outbox",
		Name:      "events_dead_lettered",
		Help:      "Outbox events moved to the DLQ after terminal failure.",
	}, []string{"event_type"})
	reg.MustRegister(published, retried, deadLettered)
	return &OutboxMetrics{
		published:    published,
		retried:      retried,
		deadLettered: deadLettered,
	}
}

// IncPublished increments the published counter for the event type.
func (o *OutboxMetrics) IncPublished(eventType string) {
	if o == nil || o.published == nil {
		return
	}
	o.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncRetried increments the retry counter for the event type.
func (o *OutboxMetrics) IncRetried(eventType string) {
	if o == nil || o.retried == nil {
		return
	}
	o.retried.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDeadLettered increments the DLQ counter for the event type.
func (o *OutboxMetrics) IncDeadLettered(eventType string) {
	if o == nil || o.deadLettered == nil {
		return
	}
	o.deadLettered.WithLabelValues(normalizeLabel(eventType)).Inc()
}
