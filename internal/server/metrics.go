package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framescan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "framescan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Detection metrics
	detectRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framescan_detect_requests_total",
			Help: "Total number of detection requests",
		},
		[]string{"type", "status"}, // type: http, websocket
	)

	detectProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "framescan_detect_processing_duration_seconds",
			Help:    "Detection processing duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"type"},
	)

	framesDetected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "framescan_frames_detected",
			Help:    "Number of title-block frames detected per drawing",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50, 100},
		},
		[]string{"type"},
	)

	sheetSetsGrouped = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "framescan_sheet_sets_grouped",
			Help:    "Number of multi-page sheet sets grouped per drawing",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25},
		},
		[]string{"type"},
	)

	flagsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framescan_flags_raised_total",
			Help: "Total number of advisory flags raised during detection",
		},
		[]string{"type"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framescan_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: requests_per_minute, requests_per_hour, max_requests_per_day, max_data_per_day
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "framescan_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framescan_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// metricsHandler exposes the Prometheus metrics endpoint.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}
