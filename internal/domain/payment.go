package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment statuses. A payment is created pending and is moved exactly once
// to success or failed by the payment worker.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Supported payment methods.
const (
	MethodUPI  = "upi"
	MethodCard = "card"
)

type Payment struct {
	ID               string    `json:"id"`
	OrderID          string    `json:"order_id"`
	MerchantID       uuid.UUID `json:"merchant_id"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Method           string    `json:"method"`
	VPA              string    `json:"vpa,omitempty"`
	CardNumber       string    `json:"card_number,omitempty"`
	CardExpiry       string    `json:"card_expiry,omitempty"`
	CardCVV          string    `json:"-"`
	Status           string    `json:"status"`
	Captured         bool      `json:"captured"`
	ErrorCode        string    `json:"error_code,omitempty"`
	ErrorDescription string    `json:"error_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MaskCardNumber replaces all but the last four characters with '*'.
// Anything shorter than five characters is returned as-is.
func MaskCardNumber(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	masked := len(cardNumber) - 4
	return strings.Repeat("*", masked) + cardNumber[masked:]
}
