package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	JobsProcessed    *prometheus.CounterVec
	JobsDropped      *prometheus.CounterVec
	PaymentOutcomes  *prometheus.CounterVec
	RefundsProcessed prometheus.Counter
	WebhookAttempts  prometheus.Counter
	WebhookDelivered prometheus.Counter
	WebhookFailed    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_jobs_processed_total",
			Help: "Jobs pulled from a queue and processed, by queue.",
		}, []string{"queue"}),
		JobsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_jobs_dropped_total",
			Help: "Jobs dropped after an unrecoverable processing error, by queue.",
		}, []string{"queue"}),
		PaymentOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_payment_outcomes_total",
			Help: "Settled payments by terminal status.",
		}, []string{"status"}),
		RefundsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_refunds_processed_total",
			Help: "Refunds settled by the refund worker.",
		}),
		WebhookAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_webhook_attempts_total",
			Help: "Webhook delivery attempts, successful or not.",
		}),
		WebhookDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_webhook_delivered_total",
			Help: "Webhook logs that reached terminal success.",
		}),
		WebhookFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_webhook_failed_total",
			Help: "Webhook logs that exhausted all delivery attempts.",
		}),
	}
}
