package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
	"github.com/imrishuroy/go-payment-gateway/internal/validation"
)

// RefundResponse is the wire shape of a refund.
type RefundResponse struct {
	ID          string `json:"id"`
	PaymentID   string `json:"payment_id"`
	Amount      int64  `json:"amount"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

type Refunds struct {
	store    store.Store
	payments *Payments
	queue    queue.Queue
	logger   *zap.Logger
}

func NewRefunds(s store.Store, payments *Payments, q queue.Queue, logger *zap.Logger) *Refunds {
	return &Refunds{store: s, payments: payments, queue: q, logger: logger}
}

// Create writes a pending refund and enqueues its settlement job. The
// over-refund invariant is enforced here, before any record exists: the
// cumulative refunded amount for a payment, pending refunds included, can
// never exceed the original payment amount.
func (s *Refunds) Create(ctx context.Context, merchant *domain.Merchant, paymentID string, req validation.CreateRefundRequest) (*RefundResponse, error) {
	payment, err := s.payments.getOwned(ctx, merchant, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusSuccess {
		return nil, badRequest("Payment not in refundable state")
	}

	totalRefunded, err := s.store.TotalRefunded(ctx, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("total refunded: %w", err)
	}
	if req.Amount > payment.Amount-totalRefunded {
		return nil, badRequest("Refund amount exceeds available amount")
	}

	refund := &domain.Refund{
		ID:         generateID("rfnd_"),
		PaymentID:  payment.ID,
		MerchantID: merchant.ID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Status:     domain.RefundStatusPending,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateRefund(ctx, refund); err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}

	if err := queue.EnqueueRefundJob(ctx, s.queue, refund.ID); err != nil {
		return nil, fmt.Errorf("enqueue refund job: %w", err)
	}

	s.logger.Info("created refund",
		zap.String("refund_id", refund.ID),
		zap.String("payment_id", payment.ID))
	return toRefundResponse(refund), nil
}

func (s *Refunds) Get(ctx context.Context, merchant *domain.Merchant, refundID string) (*RefundResponse, error) {
	refund, err := s.store.GetRefund(ctx, refundID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Refund not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get refund: %w", err)
	}
	if refund.MerchantID != merchant.ID {
		return nil, notFound("Refund not found")
	}
	return toRefundResponse(refund), nil
}

func toRefundResponse(r *domain.Refund) *RefundResponse {
	resp := &RefundResponse{
		ID:        r.ID,
		PaymentID: r.PaymentID,
		Amount:    r.Amount,
		Reason:    r.Reason,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.ProcessedAt != nil {
		resp.ProcessedAt = r.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
