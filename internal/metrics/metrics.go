package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialcore_notifications_created_total",
		Help: "Notification rows inserted by fan-out",
	}, []string{"type"})

	// IdempotentNoops counts repeated actions absorbed by a uniqueness constraint.
	IdempotentNoops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialcore_idempotent_noops_total",
		Help: "Inserts ignored because the row already existed",
	}, []string{"operation"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialcore_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
