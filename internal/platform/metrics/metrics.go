package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	TasksProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_tasks_processed_total",
			Help: "Total number of successfully completed queue tasks",
		},
	)

	TasksFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_tasks_failed_total",
			Help: "Total number of failed queue task executions",
		},
	)
)
