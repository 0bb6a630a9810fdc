/*
metrics.go - Prometheus instrumentation for the HTTP layer

PURPOSE:
  Registers the service's Prometheus collectors on a private registry and
  provides the chi middleware that observes every request. The /metrics
  endpoint serves this registry only, keeping the default global registry
  out of the exposition.

COLLECTORS:
  http_requests_total            Counter by method/path/status
  http_request_duration_seconds  Histogram by method/path/status
  trip_validations_total         Counter by outcome (valid/invalid)
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tripValidations *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	tripValidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_validations_total",
		Help: "Total trip validations by outcome",
	}, []string{"outcome"})

	registry.MustRegister(requestTotal, requestDuration, tripValidations)

	return &Metrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		tripValidations: tripValidations,
	}
}

// Handler exposes the Prometheus exposition endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTripValidation counts a validation outcome.
func (m *Metrics) ObserveTripValidation(valid bool) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.tripValidations.WithLabelValues(outcome).Inc()
}

// Middleware observes every request. The route pattern, not the raw URL,
// is used as the path label to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}
		status := strconv.Itoa(rec.status)

		m.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, path, status).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
