package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_http_requests_total",
		Help: "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracker_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_login_attempts_total",
		Help: "Login attempts by result (success, invalid, inactive, throttled).",
	}, []string{"result"})

	TaskTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_task_transitions_total",
		Help: "Accepted task status transitions.",
	}, []string{"from", "to"})

	AuditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_audit_failures_total",
		Help: "Audit log entries that could not be delivered.",
	})
)
