package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of gateway requests",
		},
		[]string{"method", "path"},
	)

	GatewayRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_requests_in_flight",
			Help: "Number of gateway requests currently being processed",
		},
	)

	GatewayRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of gateway requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	GatewayForwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_forwards_total",
			Help: "Total number of forwarded requests by service and upstream status",
		},
		[]string{"service", "status"},
	)

	GatewayUpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_upstream_errors_total",
			Help: "Total number of upstream transport failures by service",
		},
		[]string{"service"},
	)

	GatewayForwardDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_forward_duration_seconds",
			Help:    "Duration of upstream forwards in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
)
