package webhook

import (
	"encoding/json"
	"time"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
)

// Envelope is the wire shape of every webhook payload.
type Envelope struct {
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Data      PayloadData `json:"data"`
}

type PayloadData struct {
	Payment *PaymentData `json:"payment,omitempty"`
	Refund  *RefundData  `json:"refund,omitempty"`
}

type PaymentData struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Method     string `json:"method"`
	VPA        string `json:"vpa,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

type RefundData struct {
	ID          string `json:"id"`
	PaymentID   string `json:"payment_id"`
	Amount      int64  `json:"amount"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

// PaymentPayload snapshots a settled payment into the immutable payload
// stored on its webhook log. Card numbers never leave unmasked.
func PaymentPayload(event string, p *domain.Payment, now time.Time) (json.RawMessage, error) {
	env := Envelope{
		Event:     event,
		Timestamp: now.Unix(),
		Data: PayloadData{
			Payment: &PaymentData{
				ID:         p.ID,
				OrderID:    p.OrderID,
				Amount:     p.Amount,
				Currency:   p.Currency,
				Method:     p.Method,
				VPA:        p.VPA,
				CardNumber: domain.MaskCardNumber(p.CardNumber),
				Status:     p.Status,
				CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
			},
		},
	}
	return json.Marshal(env)
}

// RefundPayload snapshots a processed refund.
func RefundPayload(event string, r *domain.Refund, now time.Time) (json.RawMessage, error) {
	data := &RefundData{
		ID:        r.ID,
		PaymentID: r.PaymentID,
		Amount:    r.Amount,
		Reason:    r.Reason,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.ProcessedAt != nil {
		data.ProcessedAt = r.ProcessedAt.UTC().Format(time.RFC3339)
	}
	env := Envelope{
		Event:     event,
		Timestamp: now.Unix(),
		Data:      PayloadData{Refund: data},
	}
	return json.Marshal(env)
}
