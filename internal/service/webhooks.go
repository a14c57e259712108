package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
)

// WebhookLogResponse is the wire shape of a delivery log entry.
type WebhookLogResponse struct {
	ID            string `json:"id"`
	Event         string `json:"event"`
	Status        string `json:"status"`
	Attempts      int    `json:"attempts"`
	ResponseCode  int    `json:"response_code,omitempty"`
	LastAttemptAt string `json:"last_attempt_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// QueueStatus reports the synchronous pending-count query per queue.
type QueueStatus struct {
	PaymentJobs int `json:"payment_jobs"`
	RefundJobs  int `json:"refund_jobs"`
	WebhookJobs int `json:"webhook_jobs"`
	Total       int `json:"total"`
}

type Webhooks struct {
	store  store.Store
	queue  queue.Queue
	logger *zap.Logger
}

func NewWebhooks(s store.Store, q queue.Queue, logger *zap.Logger) *Webhooks {
	return &Webhooks{store: s, queue: q, logger: logger}
}

func (s *Webhooks) List(ctx context.Context, merchant *domain.Merchant) ([]*WebhookLogResponse, error) {
	logs, err := s.store.ListWebhookLogs(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("list webhook logs: %w", err)
	}
	out := make([]*WebhookLogResponse, 0, len(logs))
	for _, wl := range logs {
		out = append(out, toWebhookLogResponse(wl))
	}
	return out, nil
}

// Retry resets a log's delivery state machine and enqueues a fresh
// delivery, regardless of how the previous run ended.
func (s *Webhooks) Retry(ctx context.Context, merchant *domain.Merchant, id uuid.UUID) (*WebhookLogResponse, error) {
	wl, err := s.store.GetWebhookLog(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Webhook not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get webhook log: %w", err)
	}
	if wl.MerchantID != merchant.ID {
		return nil, notFound("Webhook not found")
	}

	wl.Attempts = 0
	wl.Status = domain.WebhookStatusPending
	wl.NextRetryAt = nil
	if err := s.store.UpdateWebhookLog(ctx, wl); err != nil {
		return nil, fmt.Errorf("update webhook log: %w", err)
	}
	if err := queue.EnqueueWebhookJob(ctx, s.queue, wl.ID); err != nil {
		return nil, fmt.Errorf("enqueue webhook job: %w", err)
	}
	s.logger.Info("webhook retry scheduled", zap.String("webhook_log_id", wl.ID.String()))
	return toWebhookLogResponse(wl), nil
}

// JobStatus returns the pending job count for each queue.
func (s *Webhooks) JobStatus(ctx context.Context) (*QueueStatus, error) {
	var status QueueStatus
	var err error
	if status.PaymentJobs, err = s.queue.Pending(ctx, queue.PaymentJobs); err != nil {
		return nil, fmt.Errorf("pending payment jobs: %w", err)
	}
	if status.RefundJobs, err = s.queue.Pending(ctx, queue.RefundJobs); err != nil {
		return nil, fmt.Errorf("pending refund jobs: %w", err)
	}
	if status.WebhookJobs, err = s.queue.Pending(ctx, queue.WebhookJobs); err != nil {
		return nil, fmt.Errorf("pending webhook jobs: %w", err)
	}
	status.Total = status.PaymentJobs + status.RefundJobs + status.WebhookJobs
	return &status, nil
}

func toWebhookLogResponse(wl *domain.WebhookLog) *WebhookLogResponse {
	resp := &WebhookLogResponse{
		ID:           wl.ID.String(),
		Event:        wl.Event,
		Status:       wl.Status,
		Attempts:     wl.Attempts,
		ResponseCode: wl.ResponseCode,
		CreatedAt:    wl.CreatedAt.UTC().Format(time.RFC3339),
	}
	if wl.LastAttemptAt != nil {
		resp.LastAttemptAt = wl.LastAttemptAt.UTC().Format(time.RFC3339)
	}
	return resp
}
