package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intellijobs_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intellijobs_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TasksEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intellijobs_tasks_enqueued_total",
			Help: "Total number of background tasks enqueued.",
		},
		[]string{"type"},
	)

	TasksCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intellijobs_tasks_completed_total",
			Help: "Total number of background tasks finished, by outcome.",
		},
		[]string{"type", "state"},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intellijobs_pipeline_stage_duration_seconds",
			Help:    "Duration of each resume ingestion stage.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	NotificationsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intellijobs_notifications_published_total",
			Help: "Push events published to user channels.",
		},
		[]string{"event"},
	)

	WebsocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "intellijobs_websocket_connections",
			Help: "Number of connected push channel clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TasksEnqueuedTotal,
		TasksCompletedTotal,
		PipelineStageDuration,
		NotificationsPublishedTotal,
		WebsocketConnections,
	)
}
