package validation

// CreateOrderRequest is the payload for POST /api/v1/orders. Amounts are
// integer minor units.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
	Receipt  string `json:"receipt" validate:"omitempty,max=255"`
}

// CreatePaymentRequest is the payload for POST /api/v1/payments.
// Method-specific requirements (vpa for upi, card fields for card) are
// enforced by struct-level validation.
type CreatePaymentRequest struct {
	OrderID    string `json:"order_id" validate:"required"`
	Method     string `json:"method" validate:"required,oneof=upi card"`
	VPA        string `json:"vpa" validate:"omitempty,max=255"`
	CardNumber string `json:"card_number" validate:"omitempty,min=12,max=19,numeric"`
	CardExpiry string `json:"card_expiry" validate:"omitempty,max=7"`
	CardCVV    string `json:"card_cvv" validate:"omitempty,min=3,max=4,numeric"`
}

// CreateRefundRequest is the payload for POST /api/v1/payments/:id/refunds.
type CreateRefundRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"omitempty,max=1024"`
}
