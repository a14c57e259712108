package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/metrics"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
	"github.com/imrishuroy/go-payment-gateway/internal/webhook"
)

// RefundProcessor settles pending refunds. Settlement always succeeds once
// it runs; the only abort path is the parent payment no longer being in a
// refundable state, which is re-checked here even though creation already
// enforces it.
type RefundProcessor struct {
	Store   store.Store
	Emitter *webhook.Emitter
	Delay   DelayFunc
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func (p *RefundProcessor) Process(ctx context.Context, body []byte) error {
	var job queue.RefundJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("invalid refund job body: %w", err)
	}

	p.Logger.Info("processing refund", zap.String("refund_id", job.RefundID))
	sleep(ctx, settleDelay)

	refund, err := p.Store.GetRefund(ctx, job.RefundID)
	if err != nil {
		return fmt.Errorf("refund %s: %w", job.RefundID, err)
	}

	payment, err := p.Store.GetPayment(ctx, refund.PaymentID)
	if err != nil {
		return fmt.Errorf("payment %s: %w", refund.PaymentID, err)
	}
	if payment.Status != domain.PaymentStatusSuccess {
		p.Logger.Error("payment not in refundable state, dropping refund job",
			zap.String("payment_id", payment.ID),
			zap.String("refund_id", refund.ID))
		return nil
	}

	sleep(ctx, p.Delay())
	if ctx.Err() != nil {
		return ctx.Err()
	}

	now := time.Now()
	refund.Status = domain.RefundStatusProcessed
	refund.ProcessedAt = &now
	if err := p.Store.UpdateRefund(ctx, refund); err != nil {
		return fmt.Errorf("update refund %s: %w", refund.ID, err)
	}
	p.Metrics.RefundsProcessed.Inc()
	p.Logger.Info("refund processed", zap.String("refund_id", refund.ID))

	merchant, err := p.Store.GetMerchant(ctx, refund.MerchantID)
	if err != nil {
		return fmt.Errorf("merchant %s: %w", refund.MerchantID, err)
	}
	if err := p.Emitter.EmitRefund(ctx, merchant, domain.EventRefundProcessed, refund); err != nil {
		return fmt.Errorf("emit %s for refund %s: %w", domain.EventRefundProcessed, refund.ID, err)
	}
	return nil
}
