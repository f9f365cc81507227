// Package metrics holds the Prometheus instruments for the server. All names
// are prefixed with "ours_".
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ours_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ours_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method"},
	)

	// SignedURLCacheTotal counts presigned read URL lookups by result (hit, miss).
	SignedURLCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ours_signed_url_cache_total",
			Help: "Presigned read URL cache lookups",
		},
		[]string{"result"},
	)

	// StorageOpsTotal counts object store calls by operation and status.
	StorageOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ours_storage_ops_total",
			Help: "Object store operations",
		},
		[]string{"op", "status"},
	)

	// OrphanedObjectsTotal counts objects left behind after a failed delete.
	OrphanedObjectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ours_orphaned_objects_total",
			Help: "Objects whose best-effort delete failed",
		},
		[]string{"category"},
	)

	ThrottleRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ours_throttle_rejections_total",
			Help: "Requests rejected by an escalating cooldown",
		},
		[]string{"route"},
	)

	RateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ours_rate_limit_rejections_total",
			Help: "API requests rejected by the per-IP token bucket",
		},
	)
)
