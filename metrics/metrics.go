// Package metrics provides Prometheus metrics for the wiki client and its
// MCP surface. It tracks tool calls, backend API traffic per protocol, and
// the extra work the legacy polyfill performs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "wikibridge"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// BackendRequestsTotal counts wiki API operations by protocol and status
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "backend_requests_total",
		Help:      "Wiki API operations by protocol, operation and status",
	}, []string{"protocol", "operation", "status"})

	// BackendLatency measures wiki API operation latency
	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "backend_latency_seconds",
		Help:      "Wiki API operation latency by protocol and operation",
		Buckets:   prometheus.DefBuckets,
	}, []string{"protocol", "operation"})

	// PolyfillSecondaryFetches counts the extra requests the legacy
	// translation layer issues to reconstruct modern response shapes
	// (parent sizes for deltas, per-file detail, bot contributor lists).
	PolyfillSecondaryFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "polyfill_secondary_fetches_total",
		Help:      "Secondary requests issued by the legacy polyfill by kind",
	}, []string{"kind"})

	// HistoryBatchesTotal counts fetched history batches by protocol
	HistoryBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "history_batches_total",
		Help:      "History continuation batches fetched by protocol",
	}, []string{"protocol"})

	// HistoryRevisionsFiltered counts revisions dropped by client-side filters
	HistoryRevisionsFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "history_revisions_filtered_total",
		Help:      "Revisions removed by client-side history filtering",
	}, []string{"filter"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// HTTPRequestsTotal counts HTTP transport requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method and status",
	}, []string{"method", "status"})

	// HTTPRequestDuration measures HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency distribution",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method"})
)

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	RequestsTotal.WithLabelValues(tool, status).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordBackendCall records a wiki API operation
func RecordBackendCall(protocol, operation string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	BackendRequestsTotal.WithLabelValues(protocol, operation, status).Inc()
	BackendLatency.WithLabelValues(protocol, operation).Observe(duration)
}

// RecordSecondaryFetch records one extra polyfill request
func RecordSecondaryFetch(kind string) {
	PolyfillSecondaryFetches.WithLabelValues(kind).Inc()
}
