package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/idempotency"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
	"github.com/imrishuroy/go-payment-gateway/internal/validation"
)

// PaymentResponse is the wire shape of a payment. Card numbers are always
// masked before they reach it.
type PaymentResponse struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Method           string `json:"method"`
	VPA              string `json:"vpa,omitempty"`
	CardNumber       string `json:"card_number,omitempty"`
	Status           string `json:"status"`
	Captured         bool   `json:"captured"`
	ErrorCode        string `json:"error_code,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

type Payments struct {
	store  store.Store
	orders *Orders
	cache  idempotency.Cache
	queue  queue.Queue
	ttl    time.Duration
	logger *zap.Logger
}

func NewPayments(s store.Store, orders *Orders, cache idempotency.Cache, q queue.Queue, ttl time.Duration, logger *zap.Logger) *Payments {
	return &Payments{store: s, orders: orders, cache: cache, queue: q, ttl: ttl, logger: logger}
}

// Create validates the request, writes a pending payment, enqueues its
// settlement job, and returns the serialized response. When an idempotency
// key is supplied, the serialized response is memoized after the payment is
// durably created, and an unexpired replay returns the cached bytes
// verbatim without creating anything.
func (s *Payments) Create(ctx context.Context, merchant *domain.Merchant, req validation.CreatePaymentRequest, idempotencyKey string) (json.RawMessage, error) {
	if idempotencyKey != "" {
		cached, err := s.cache.Get(ctx, merchant.ID, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
		if cached != nil {
			s.logger.Info("returning cached payment response",
				zap.String("merchant_id", merchant.ID.String()),
				zap.String("idempotency_key", idempotencyKey))
			return cached, nil
		}
	}

	order, err := s.orders.getOwned(ctx, merchant, req.OrderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:         generateID("pay_"),
		OrderID:    order.ID,
		MerchantID: merchant.ID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Method:     req.Method,
		VPA:        req.VPA,
		CardNumber: req.CardNumber,
		CardExpiry: req.CardExpiry,
		CardCVV:    req.CardCVV,
		Status:     domain.PaymentStatusPending,
		Captured:   false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if err := queue.EnqueuePaymentJob(ctx, s.queue, payment.ID); err != nil {
		return nil, fmt.Errorf("enqueue payment job: %w", err)
	}

	response, err := json.Marshal(toPaymentResponse(payment))
	if err != nil {
		return nil, fmt.Errorf("marshal payment response: %w", err)
	}

	if idempotencyKey != "" {
		// The payment is durable and the response fully built; cache the
		// memo last so cache and store are never out of sync for a reader.
		if err := s.cache.Put(ctx, merchant.ID, idempotencyKey, response, s.ttl); err != nil {
			s.logger.Error("failed to cache idempotent response",
				zap.String("idempotency_key", idempotencyKey), zap.Error(err))
		}
	}

	s.logger.Info("created payment",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", order.ID))
	return response, nil
}

// Capture marks a settled payment as captured.
func (s *Payments) Capture(ctx context.Context, merchant *domain.Merchant, paymentID string) (*PaymentResponse, error) {
	payment, err := s.getOwned(ctx, merchant, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusSuccess {
		return nil, badRequest("Payment not in capturable state")
	}
	if payment.Captured {
		return nil, badRequest("Payment already captured")
	}
	payment.Captured = true
	payment.UpdatedAt = time.Now()
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	s.logger.Info("captured payment", zap.String("payment_id", payment.ID))
	return toPaymentResponse(payment), nil
}

func (s *Payments) Get(ctx context.Context, merchant *domain.Merchant, paymentID string) (*PaymentResponse, error) {
	payment, err := s.getOwned(ctx, merchant, paymentID)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

func (s *Payments) List(ctx context.Context, merchant *domain.Merchant) ([]*PaymentResponse, error) {
	payments, err := s.store.ListPayments(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]*PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

func (s *Payments) getOwned(ctx context.Context, merchant *domain.Merchant, paymentID string) (*domain.Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment.MerchantID != merchant.ID {
		return nil, notFound("Payment not found")
	}
	return payment, nil
}

func toPaymentResponse(p *domain.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:               p.ID,
		OrderID:          p.OrderID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Method:           p.Method,
		VPA:              p.VPA,
		CardNumber:       domain.MaskCardNumber(p.CardNumber),
		Status:           p.Status,
		Captured:         p.Captured,
		ErrorCode:        p.ErrorCode,
		ErrorDescription: p.ErrorDescription,
		CreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !p.UpdatedAt.IsZero() {
		resp.UpdatedAt = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
