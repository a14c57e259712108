package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Webhook event names.
const (
	EventPaymentSuccess  = "payment.success"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
)

// Webhook delivery statuses. A log stays pending across retries and becomes
// terminal on the first 2xx response (success) or once attempts are
// exhausted (failed).
const (
	WebhookStatusPending = "pending"
	WebhookStatusSuccess = "success"
	WebhookStatusFailed  = "failed"
)

// WebhookLog records one notification and its delivery attempts. Payload is
// snapshotted at creation and never rewritten; every attempt updates the
// attempt counter and the response fields.
type WebhookLog struct {
	ID            uuid.UUID       `json:"id"`
	MerchantID    uuid.UUID       `json:"merchant_id"`
	Event         string          `json:"event"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
	NextRetryAt   *time.Time      `json:"next_retry_at,omitempty"`
	ResponseCode  int             `json:"response_code,omitempty"`
	ResponseBody  string          `json:"response_body,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
