package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	errors            *prometheus.CounterVec
	keysIssued        *prometheus.CounterVec
	redemptions       *prometheus.CounterVec
	notificationFails *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "property_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "property_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "property_http_errors_total",
			Help: "Error responses by route, method and error code",
		}, []string{"route", "method", "code"}),
		keysIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "property_registration_keys_issued_total",
			Help: "Registration keys issued by unit kind",
		}, []string{"kind"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "property_registration_redemptions_total",
			Help: "Registration key redemptions by unit kind and outcome",
		}, []string{"kind", "outcome"}),
		notificationFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "property_registration_notification_failures_total",
			Help: "Registration key notifications that could not be delivered",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.errors, m.keysIssued, m.redemptions, m.notificationFails)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// KeyIssued records a persisted registration key.
func (m *Metrics) KeyIssued(kind string) {
	if m == nil {
		return
	}
	m.keysIssued.WithLabelValues(kind).Inc()
}

// Redemption records the outcome of a redemption attempt.
func (m *Metrics) Redemption(kind, outcome string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(kind, outcome).Inc()
}

// NotificationFailed records an undelivered registration key.
func (m *Metrics) NotificationFailed(kind string) {
	if m == nil {
		return
	}
	m.notificationFails.WithLabelValues(kind).Inc()
}
