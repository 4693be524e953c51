// ABOUTME: Prometheus metrics for sessions, message relay, and translation
// ABOUTME: Collector is registered once and shared by registry, router, and gateway

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records operational metrics for the relay.
type Collector struct {
	activeSessions      prometheus.Gauge
	sessionsOpened      prometheus.Counter
	sessionsSuperseded  prometheus.Counter
	messagesRelayed     prometheus.Counter
	messagesDropped     prometheus.Counter
	deliveries          *prometheus.CounterVec
	translationFailures prometheus.Counter
	translationLatency  prometheus.Histogram
}

// Delivery outcome label values.
const (
	DeliveryDelivered = "delivered"
	DeliveryOffline   = "offline"
	DeliveryFailed    = "failed"
)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "babel_active_sessions",
			Help: "Number of currently registered live sessions.",
		}),
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babel_sessions_opened_total",
			Help: "Total WebSocket sessions successfully authenticated and registered.",
		}),
		sessionsSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babel_sessions_superseded_total",
			Help: "Total sessions closed because the same user reconnected.",
		}),
		messagesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babel_messages_relayed_total",
			Help: "Total inbound frames persisted as messages.",
		}),
		messagesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babel_messages_dropped_total",
			Help: "Total inbound frames dropped for an unknown receiver.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babel_deliveries_total",
			Help: "Delivery attempts by outcome.",
		}, []string{"outcome"}),
		translationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babel_translation_failures_total",
			Help: "Total translation calls that failed open to the original text.",
		}),
		translationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "babel_translation_latency_seconds",
			Help:    "Latency of translation backend calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.activeSessions,
		c.sessionsOpened,
		c.sessionsSuperseded,
		c.messagesRelayed,
		c.messagesDropped,
		c.deliveries,
		c.translationFailures,
		c.translationLatency,
	)

	return c
}

// SessionRegistered records a new live session.
func (c *Collector) SessionRegistered() {
	c.activeSessions.Inc()
	c.sessionsOpened.Inc()
}

// SessionUnregistered records a session leaving the registry.
func (c *Collector) SessionUnregistered() {
	c.activeSessions.Dec()
}

// SessionSuperseded records a session replaced by a newer connection for the
// same user. The gauge is unchanged: one session left, one arrived.
func (c *Collector) SessionSuperseded() {
	c.sessionsSuperseded.Inc()
}

// MessageRelayed records a persisted inbound frame.
func (c *Collector) MessageRelayed() {
	c.messagesRelayed.Inc()
}

// MessageDropped records a frame ignored because the receiver is unknown.
func (c *Collector) MessageDropped() {
	c.messagesDropped.Inc()
}

// Delivery records a delivery attempt outcome.
func (c *Collector) Delivery(outcome string) {
	c.deliveries.WithLabelValues(outcome).Inc()
}

// TranslationFailed records a translation error that fell back to the original text.
func (c *Collector) TranslationFailed() {
	c.translationFailures.Inc()
}

// TranslationObserved records the latency of a translation backend call.
func (c *Collector) TranslationObserved(d time.Duration) {
	c.translationLatency.Observe(d.Seconds())
}
