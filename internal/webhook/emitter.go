package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
)

// Emitter creates webhook delivery logs and enqueues their first delivery.
// The payload is snapshotted here, once; the delivery engine never rebuilds
// it. There is no transaction spanning the store write and the enqueue, so a
// crash between the two loses that webhook.
type Emitter struct {
	store   store.Store
	queue   queue.Queue
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewEmitter(s store.Store, q queue.Queue, logger *zap.Logger) *Emitter {
	return &Emitter{store: s, queue: q, logger: logger, nowFunc: time.Now}
}

func (e *Emitter) EmitPayment(ctx context.Context, merchant *domain.Merchant, event string, p *domain.Payment) error {
	payload, err := PaymentPayload(event, p, e.nowFunc())
	if err != nil {
		return fmt.Errorf("build payment payload: %w", err)
	}
	return e.emit(ctx, merchant, event, payload)
}

func (e *Emitter) EmitRefund(ctx context.Context, merchant *domain.Merchant, event string, r *domain.Refund) error {
	payload, err := RefundPayload(event, r, e.nowFunc())
	if err != nil {
		return fmt.Errorf("build refund payload: %w", err)
	}
	return e.emit(ctx, merchant, event, payload)
}

func (e *Emitter) emit(ctx context.Context, merchant *domain.Merchant, event string, payload []byte) error {
	wl := &domain.WebhookLog{
		ID:         uuid.New(),
		MerchantID: merchant.ID,
		Event:      event,
		Payload:    payload,
		Status:     domain.WebhookStatusPending,
		Attempts:   0,
		CreatedAt:  e.nowFunc(),
	}
	if err := e.store.CreateWebhookLog(ctx, wl); err != nil {
		return fmt.Errorf("create webhook log: %w", err)
	}
	if err := queue.EnqueueWebhookJob(ctx, e.queue, wl.ID); err != nil {
		return fmt.Errorf("enqueue webhook job: %w", err)
	}
	e.logger.Info("created webhook log",
		zap.String("webhook_log_id", wl.ID.String()),
		zap.String("event", event))
	return nil
}
