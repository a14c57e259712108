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

const (
	errCodePaymentFailed = "PAYMENT_FAILED"
	errDescPaymentFailed = "Payment processing failed"
)

// PaymentProcessor settles pending payments: simulate acquirer latency,
// decide the outcome, persist the terminal status, and emit the webhook.
type PaymentProcessor struct {
	Store   store.Store
	Emitter *webhook.Emitter
	Outcome OutcomeDecider
	Delay   DelayFunc
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func (p *PaymentProcessor) Process(ctx context.Context, body []byte) error {
	var job queue.PaymentJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("invalid payment job body: %w", err)
	}

	p.Logger.Info("processing payment", zap.String("payment_id", job.PaymentID))
	sleep(ctx, settleDelay)

	payment, err := p.Store.GetPayment(ctx, job.PaymentID)
	if err != nil {
		return fmt.Errorf("payment %s: %w", job.PaymentID, err)
	}

	sleep(ctx, p.Delay())
	if ctx.Err() != nil {
		return ctx.Err()
	}

	success := p.Outcome.Decide(payment.Method)
	if success {
		payment.Status = domain.PaymentStatusSuccess
	} else {
		payment.Status = domain.PaymentStatusFailed
		payment.ErrorCode = errCodePaymentFailed
		payment.ErrorDescription = errDescPaymentFailed
	}
	payment.UpdatedAt = time.Now()

	if err := p.Store.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("update payment %s: %w", payment.ID, err)
	}
	p.Metrics.PaymentOutcomes.WithLabelValues(payment.Status).Inc()
	p.Logger.Info("payment settled",
		zap.String("payment_id", payment.ID),
		zap.String("status", payment.Status))

	merchant, err := p.Store.GetMerchant(ctx, payment.MerchantID)
	if err != nil {
		return fmt.Errorf("merchant %s: %w", payment.MerchantID, err)
	}

	event := domain.EventPaymentSuccess
	if !success {
		event = domain.EventPaymentFailed
	}
	if err := p.Emitter.EmitPayment(ctx, merchant, event, payment); err != nil {
		return fmt.Errorf("emit %s for payment %s: %w", event, payment.ID, err)
	}
	return nil
}
