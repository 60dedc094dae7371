// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worklog_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LogTransitionsTotal counts committed work log status transitions.
	LogTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_log_transitions_total",
			Help: "Committed work log status transitions by from/to state",
		},
		[]string{"from", "to"},
	)

	// NotificationsCreatedTotal counts notifications committed with a transition.
	NotificationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_notifications_created_total",
			Help: "Notifications created by event",
		},
		[]string{"event"},
	)
)
