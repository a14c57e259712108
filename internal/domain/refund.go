package domain

import (
	"time"

	"github.com/google/uuid"
)

// Refund statuses. Refund settlement has no failure branch: once the worker
// picks up a pending refund against a settled payment it always reaches
// processed.
const (
	RefundStatusPending   = "pending"
	RefundStatusProcessed = "processed"
)

type Refund struct {
	ID          string     `json:"id"`
	PaymentID   string     `json:"payment_id"`
	MerchantID  uuid.UUID  `json:"merchant_id"`
	Amount      int64      `json:"amount"`
	Reason      string     `json:"reason,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
