package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Queue names. Each is an independent FIFO stream of small job records.
const (
	PaymentJobs = "payment-jobs"
	RefundJobs  = "refund-jobs"
	WebhookJobs = "webhook-jobs"
)

// Queue is a set of named FIFO job queues. Dequeue blocks up to wait and
// returns (nil, nil) when nothing arrived, so workers can re-check their
// context without busy-spinning. Jobs are fire-and-forget: there is no
// acknowledgment, so a crash between dequeue and completion drops the job.
type Queue interface {
	Enqueue(ctx context.Context, name string, body []byte) error
	Dequeue(ctx context.Context, name string, wait time.Duration) ([]byte, error)
	Pending(ctx context.Context, name string) (int, error)
}

// PaymentJob references a pending payment by id.
type PaymentJob struct {
	PaymentID string `json:"payment_id"`
}

// RefundJob references a pending refund by id.
type RefundJob struct {
	RefundID string `json:"refund_id"`
}

// WebhookJob references a webhook delivery log by id. A retry is a brand-new
// job; only the persisted attempt counter distinguishes it.
type WebhookJob struct {
	WebhookLogID uuid.UUID `json:"webhook_log_id"`
}

func EnqueuePaymentJob(ctx context.Context, q Queue, paymentID string) error {
	body, err := json.Marshal(PaymentJob{PaymentID: paymentID})
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, PaymentJobs, body)
}

func EnqueueRefundJob(ctx context.Context, q Queue, refundID string) error {
	body, err := json.Marshal(RefundJob{RefundID: refundID})
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, RefundJobs, body)
}

func EnqueueWebhookJob(ctx context.Context, q Queue, webhookLogID uuid.UUID) error {
	body, err := json.Marshal(WebhookJob{WebhookLogID: webhookLogID})
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, WebhookJobs, body)
}
