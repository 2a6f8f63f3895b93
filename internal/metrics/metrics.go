package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alecgard/enclave/internal/confirm"
)

// Metrics holds the console's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Console server.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Calls to the society backend. status_code is "0" for transport failures.
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	StaleResponsesTotal       *prometheus.CounterVec
	ValidationRejectionsTotal *prometheus.CounterVec
	ConfirmationsTotal        *prometheus.CounterVec
	LoginsTotal               *prometheus.CounterVec
	RateLimitRejectionsTotal  *prometheus.CounterVec
	AuditDroppedTotal         prometheus.Counter

	ServerStartTime prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enclave_http_requests_total",
			Help: "Total number of console HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enclave_http_request_duration_seconds",
			Help:    "Console HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		APIRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enclave_api_requests_total",
			Help: "Total number of requests sent to the backend API.",
		}, []string{"method", "route", "status_code"}),

		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enclave_api_request_duration_seconds",
			Help:    "Backend API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		StaleResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enclave_list_stale_responses_total",
			Help: "List responses dropped because a newer one was already applied.",
		}, []string{"screen"}),

		ValidationRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enclave_validation_rejections_total",
			Help: "Writes rejected locally before reaching the backend.",
		}, []string{"resource"}),

		ConfirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enclave_confirmations_total",
			Help: "Gated actions by outcome.",
		}, []string{"outcome"}),

		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enclave_logins_total",
			Help: "Login attempts that reached the backend.",
		}, []string{"result"}),

		RateLimitRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enclave_ratelimit_rejections_total",
			Help: "Requests rejected by the console rate limiter.",
		}, []string{"scope"}),

		AuditDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enclave_audit_events_dropped_total",
			Help: "Audit events lost because a batch could not be written.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "enclave_server_start_time_seconds",
			Help: "Unix timestamp when the process started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.APIRequestsTotal,
		m.APIRequestDuration,
		m.StaleResponsesTotal,
		m.ValidationRejectionsTotal,
		m.ConfirmationsTotal,
		m.LoginsTotal,
		m.RateLimitRejectionsTotal,
		m.AuditDroppedTotal,
		m.ServerStartTime,
	)
	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// ObserveHTTP records one console request.
func (m *Metrics) ObserveHTTP(method, pattern string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pattern).Observe(d.Seconds())
}

// RecordAPIRequest implements apiclient.Recorder.
func (m *Metrics) RecordAPIRequest(method, route string, status int, d time.Duration) {
	m.APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncStaleResponse(screen string) {
	m.StaleResponsesTotal.WithLabelValues(screen).Inc()
}

func (m *Metrics) IncValidationRejection(resource string) {
	m.ValidationRejectionsTotal.WithLabelValues(resource).Inc()
}

// ObserveConfirmation implements confirm.Observer.
func (m *Metrics) ObserveConfirmation(title string, outcome confirm.Outcome) {
	m.ConfirmationsTotal.WithLabelValues(string(outcome)).Inc()
}

// ObserveLogin implements session.LoginObserver.
func (m *Metrics) ObserveLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncRateLimitRejection(scope string) {
	m.RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
}

func (m *Metrics) AddAuditDropped(n int) {
	m.AuditDroppedTotal.Add(float64(n))
}
