package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus instrumentation for the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	validationOutcomes *prometheus.CounterVec
	scanCaptures       *prometheus.CounterVec
}

// NewMetrics initializes a registry with service collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by path, method and status",
		}, []string{"path", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		httpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "Total HTTP errors by path, method and error code",
		}, []string{"path", "method", "code"}),
		validationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_validation_outcomes_total",
			Help: "Ticket validation attempts by outcome",
		}, []string{"outcome"}),
		scanCaptures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scan_captures_total",
			Help: "Token scan captures by result",
		}, []string{"result"}),
	}
}

// RecordRequest counts a completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts a request that resolved to a domain error.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordValidation counts a TryValidate outcome.
func (m *Metrics) RecordValidation(outcome string) {
	if m == nil {
		return
	}
	m.validationOutcomes.WithLabelValues(outcome).Inc()
}

// RecordScanCapture counts a scan capture attempt ("captured" or "malformed").
func (m *Metrics) RecordScanCapture(result string) {
	if m == nil {
		return
	}
	m.scanCaptures.WithLabelValues(result).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
