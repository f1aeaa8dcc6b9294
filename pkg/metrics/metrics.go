// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UploadsTotal tracks document uploads by file type and outcome.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_uploads_total",
			Help: "Total document uploads",
		},
		[]string{"file_type", "status"},
	)

	// UploadBytes tracks uploaded document sizes.
	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "document_upload_bytes",
			Help:    "Uploaded document size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	// ChatTurnsTotal tracks chat turns by role.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total chat turns persisted",
		},
		[]string{"role"},
	)

	// LLMRequestDuration tracks generation request duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Generation service request duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// DegradedResultsTotal tracks soft failures converted to degraded output.
	DegradedResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "degraded_results_total",
			Help: "Requests that succeeded with a degraded result",
		},
		[]string{"component"},
	)

	// QueuePublishesTotal tracks work items handed off to the queue.
	QueuePublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_publishes_total",
			Help: "Work items published to the processing queue",
		},
		[]string{"backend", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for a generation call.
func RecordLLMRequest(model, status string, duration float64, tokensIn, tokensOut int) {
	LLMRequestDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordDegraded marks a degraded-but-successful result for a component.
func RecordDegraded(component string) {
	DegradedResultsTotal.WithLabelValues(component).Inc()
}
