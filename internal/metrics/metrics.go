package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainup_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trainup_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SessionRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trainup_session_requests_total",
			Help: "Total number of session booking requests",
		},
	)

	SessionApprovalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainup_session_approvals_total",
			Help: "Total number of approved and rejected session requests",
		},
		[]string{"outcome"},
	)

	SlotsMaterializedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trainup_slots_materialized_total",
			Help: "Total number of bookable slots materialized from weekly templates",
		},
	)

	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainup_chat_messages_total",
			Help: "Total number of chat messages relayed",
		},
		[]string{"sender_role"},
	)

	QuotaDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainup_quota_denials_total",
			Help: "Total number of plan quota denials",
		},
		[]string{"feature", "reason"},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trainup_ws_active_connections",
			Help: "Number of active websocket connections",
		},
	)

	NotificationJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainup_notification_jobs_total",
			Help: "Total number of notification jobs by outcome",
		},
		[]string{"status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trainup_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSessionRequest() {
	SessionRequestsTotal.Inc()
}

func RecordApproval(outcome string) {
	SessionApprovalsTotal.WithLabelValues(outcome).Inc()
}

func RecordChatMessage(senderRole string) {
	ChatMessagesTotal.WithLabelValues(senderRole).Inc()
}

func RecordQuotaDenial(feature, reason string) {
	QuotaDenialsTotal.WithLabelValues(feature, reason).Inc()
}

func RecordNotificationJob(status string) {
	NotificationJobsTotal.WithLabelValues(status).Inc()
}
