package domain

import (
	"time"

	"github.com/google/uuid"
)

const OrderStatusCreated = "created"

// Order is the merchant-declared intent to collect an amount. Amounts are
// integer minor units (paise).
type Order struct {
	ID         string    `json:"id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Receipt    string    `json:"receipt,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
