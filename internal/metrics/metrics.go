package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Project lifecycle transitions: accept_bid, complete_project
	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_lifecycle_transitions_total",
			Help: "Project lifecycle transition attempts by outcome",
		},
		[]string{"transition", "outcome"},
	)

	// Bid mutations: placed, withdrawn
	BidEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bid_events_total",
			Help: "Bid create/delete attempts by outcome",
		},
		[]string{"event", "outcome"},
	)

	PaymentIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_intents_total",
			Help: "Payment intent creation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Payment processor call latency (seconds)
	ProcessorCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_processor_call_duration_seconds",
			Help:    "Payment processor call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"status"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordTransition(transition, outcome string) {
	LifecycleTransitions.WithLabelValues(transition, outcome).Inc()
}

func RecordBidEvent(event, outcome string) {
	BidEvents.WithLabelValues(event, outcome).Inc()
}

func RecordPaymentIntent(outcome string) {
	PaymentIntents.WithLabelValues(outcome).Inc()
}

func RecordProcessorCall(status string, duration time.Duration) {
	ProcessorCallDuration.WithLabelValues(status).Observe(duration.Seconds())
}
