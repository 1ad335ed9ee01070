// Package metrics exposes Prometheus collectors for the model-call path,
// the only externally bound latency source in the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelRequests counts model invocations by operation (chat,
	// interview) and outcome (success, error, degraded).
	ModelRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackmentor_model_requests_total",
		Help: "Language model invocations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// ModelLatency observes end-to-end model call duration including
	// retries.
	ModelLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackmentor_model_request_duration_seconds",
		Help:    "Language model call duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"operation"})

	// ExchangesRecorded counts persisted user/assistant exchange pairs.
	ExchangesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackmentor_chat_exchanges_recorded_total",
		Help: "Chat exchanges durably recorded.",
	})
)
