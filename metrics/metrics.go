// Package metrics exposes the Prometheus collectors for the orchestration
// runtime: graph node execution, LLM Gateway latency, and the thin HTTP
// transport. Grounded on the teacher's pkg/observability/metrics.go —
// same namespaced CounterVec/HistogramVec-per-concern shape, trimmed to
// this module's concerns (no tool/RAG/index metrics, since this runtime has
// no such collaborators) and with a nil-receiver no-op pattern so every
// call site can record unconditionally when metrics are disabled.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/climatevia/pathway/config"
)

// Metrics holds every collector. A nil *Metrics is valid and every Record*
// method becomes a no-op, matching cfg.Enabled=false.
type Metrics struct {
	registry *prometheus.Registry

	nodeExecutions *prometheus.CounterVec
	nodeDuration   *prometheus.HistogramVec
	nodeErrors     *prometheus.CounterVec

	llmCalls    *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
	llmErrors   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New builds the collector set, or returns nil if cfg disables metrics.
func New(cfg config.MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.nodeExecutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathway", Subsystem: "graph", Name: "node_executions_total",
		Help: "Total number of workflow graph node executions.",
	}, []string{"node"})
	m.nodeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pathway", Subsystem: "graph", Name: "node_duration_seconds",
		Help:    "Workflow graph node execution duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"node"})
	m.nodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathway", Subsystem: "graph", Name: "node_errors_total",
		Help: "Total number of workflow graph node failures.",
	}, []string{"node"})

	m.llmCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathway", Subsystem: "llm", Name: "calls_total",
		Help: "Total number of LLM Gateway calls.",
	}, []string{"gateway", "operation"})
	m.llmDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pathway", Subsystem: "llm", Name: "call_duration_seconds",
		Help:    "LLM Gateway call duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"gateway", "operation"})
	m.llmErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathway", Subsystem: "llm", Name: "errors_total",
		Help: "Total number of LLM Gateway call failures.",
	}, []string{"gateway", "operation"})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathway", Subsystem: "http", Name: "requests_total",
		Help: "Total number of HTTP requests served.",
	}, []string{"route", "method", "status"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pathway", Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	m.registry.MustRegister(
		m.nodeExecutions, m.nodeDuration, m.nodeErrors,
		m.llmCalls, m.llmDuration, m.llmErrors,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// RecordNode records one graph node execution's outcome and duration.
func (m *Metrics) RecordNode(node string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	m.nodeExecutions.WithLabelValues(node).Inc()
	m.nodeDuration.WithLabelValues(node).Observe(dur.Seconds())
	if err != nil {
		m.nodeErrors.WithLabelValues(node).Inc()
	}
}

// RecordLLMCall records one LLM Gateway call's outcome and duration.
func (m *Metrics) RecordLLMCall(gateway, operation string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(gateway, operation).Inc()
	m.llmDuration.WithLabelValues(gateway, operation).Observe(dur.Seconds())
	if err != nil {
		m.llmErrors.WithLabelValues(gateway, operation).Inc()
	}
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(dur.Seconds())
}

// Handler serves the collected metrics in the Prometheus exposition format.
// Returns a handler that responds 404 if metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
