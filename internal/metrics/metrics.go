package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors the service exports. A nil *Metrics is valid
// and records nothing, so tests and the CLI can pass nil.
type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	timeouts        *prometheus.CounterVec
	retries         *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "novelhub",
			Name:      "backend_requests_total",
			Help:      "Calls made to the hosted backend by operation and outcome.",
		}, []string{"operation", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "novelhub",
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of calls to the hosted backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "novelhub",
			Name:      "operation_timeouts_total",
			Help:      "Operations abandoned by the timeout race.",
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "novelhub",
			Name:      "operation_retries_total",
			Help:      "Retry attempts after a failed read.",
		}, []string{"operation"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "novelhub",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.backendRequests,
		m.backendLatency,
		m.timeouts,
		m.retries,
		m.httpLatency,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveBackend(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.backendRequests.WithLabelValues(operation, outcome).Inc()
	m.backendLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) Timeout(operation string) {
	if m == nil {
		return
	}
	m.timeouts.WithLabelValues(operation).Inc()
}

func (m *Metrics) Retry(operation string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests that gather collectors directly.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
