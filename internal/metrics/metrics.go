package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blinno_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blinno_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blinno_payments_created_total",
			Help: "Total number of payment intents by category and outcome",
		},
		[]string{"category", "status"},
	)

	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blinno_webhooks_total",
			Help: "Total number of gateway webhook deliveries by result",
		},
		[]string{"result"},
	)

	LedgerTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blinno_ledger_transactions_total",
			Help: "Total number of ledger transactions by type",
		},
		[]string{"type"},
	)

	PayoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blinno_payouts_total",
			Help: "Total number of payout state transitions",
		},
		[]string{"status"},
	)

	DisbursementFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blinno_disbursement_failures_total",
			Help: "Total number of failed gateway disbursements",
		},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blinno_notifications_sent_total",
			Help: "Total number of notifications sent",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "blinno_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPaymentCreated(category, status string) {
	PaymentsCreatedTotal.WithLabelValues(category, status).Inc()
}

func RecordWebhook(result string) {
	WebhooksTotal.WithLabelValues(result).Inc()
}

func RecordLedgerTransaction(txType string) {
	LedgerTransactionsTotal.WithLabelValues(txType).Inc()
}

func RecordPayout(status string) {
	PayoutsTotal.WithLabelValues(status).Inc()
}

func RecordDisbursementFailure() {
	DisbursementFailuresTotal.Inc()
}

func RecordNotification(notifType, status string) {
	NotificationsSentTotal.WithLabelValues(notifType, status).Inc()
}
