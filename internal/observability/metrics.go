package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	apiRequestsTotal          *prometheus.CounterVec
	apiLatencySeconds         *prometheus.HistogramVec
	apiErrorsTotal            *prometheus.CounterVec
	chatConnectionsTotal      prometheus.Counter
	chatMessagesSent          *prometheus.CounterVec
	notificationsPublished    *prometheus.CounterVec
	notificationStreamsActive prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors shared across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sparkiq_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sparkiq_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sparkiq_api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		chatConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sparkiq_chat_connections_total",
			Help: "Total number of websocket chat connections accepted.",
		})

		chatMessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sparkiq_chat_messages_sent_total",
			Help: "Total number of chat messages delivered, by sender role.",
		}, []string{"sender_role"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sparkiq_notifications_published_total",
			Help: "Total number of notifications published, by kind.",
		}, []string{"kind"})

		notificationStreamsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sparkiq_notification_streams_active",
			Help: "Number of currently open notification streams.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			chatConnectionsTotal,
			chatMessagesSent,
			notificationsPublished,
			notificationStreamsActive,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ChatConnectionsTotal exposes the websocket connection counter.
func ChatConnectionsTotal() prometheus.Counter {
	RegisterMetrics()
	return chatConnectionsTotal
}

// ChatMessagesSent exposes the delivered-message counter.
func ChatMessagesSent() *prometheus.CounterVec {
	RegisterMetrics()
	return chatMessagesSent
}

// NotificationsPublishedTotal exposes the published-notification counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// NotificationStreamsActive exposes the open-stream gauge.
func NotificationStreamsActive() prometheus.Gauge {
	RegisterMetrics()
	return notificationStreamsActive
}
