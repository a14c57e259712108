package webhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
)

func TestEmitPaymentCreatesLogAndJob(t *testing.T) {
	st := store.NewMemory()
	q := queue.NewMemory()
	emitter := NewEmitter(st, q, zap.NewNop())
	ctx := context.Background()

	merchant := &domain.Merchant{ID: uuid.New(), WebhookURL: "https://example.com/hook"}
	require.NoError(t, st.CreateMerchant(ctx, merchant))

	payment := &domain.Payment{
		ID:         "pay_abc",
		OrderID:    "order_abc",
		MerchantID: merchant.ID,
		Amount:     1000,
		Currency:   "INR",
		Method:     domain.MethodCard,
		CardNumber: "4111111111111111",
		Status:     domain.PaymentStatusSuccess,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, emitter.EmitPayment(ctx, merchant, domain.EventPaymentSuccess, payment))

	logs, err := st.ListWebhookLogs(ctx, merchant.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	wl := logs[0]
	assert.Equal(t, domain.EventPaymentSuccess, wl.Event)
	assert.Equal(t, domain.WebhookStatusPending, wl.Status)
	assert.Zero(t, wl.Attempts)

	var env Envelope
	require.NoError(t, json.Unmarshal(wl.Payload, &env))
	assert.Equal(t, domain.EventPaymentSuccess, env.Event)
	require.NotNil(t, env.Data.Payment)
	assert.Equal(t, "pay_abc", env.Data.Payment.ID)
	assert.Equal(t, "************1111", env.Data.Payment.CardNumber, "payload must carry the masked card number")

	body, err := q.Dequeue(ctx, queue.WebhookJobs, time.Second)
	require.NoError(t, err)
	var job queue.WebhookJob
	require.NoError(t, json.Unmarshal(body, &job))
	assert.Equal(t, wl.ID, job.WebhookLogID)
}

func TestEmitRefundCreatesLogAndJob(t *testing.T) {
	st := store.NewMemory()
	q := queue.NewMemory()
	emitter := NewEmitter(st, q, zap.NewNop())
	ctx := context.Background()

	merchant := &domain.Merchant{ID: uuid.New()}
	require.NoError(t, st.CreateMerchant(ctx, merchant))

	processedAt := time.Now()
	refund := &domain.Refund{
		ID:          "rfnd_abc",
		PaymentID:   "pay_abc",
		MerchantID:  merchant.ID,
		Amount:      500,
		Status:      domain.RefundStatusProcessed,
		CreatedAt:   time.Now(),
		ProcessedAt: &processedAt,
	}
	require.NoError(t, emitter.EmitRefund(ctx, merchant, domain.EventRefundProcessed, refund))

	logs, err := st.ListWebhookLogs(ctx, merchant.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	var env Envelope
	require.NoError(t, json.Unmarshal(logs[0].Payload, &env))
	assert.Equal(t, domain.EventRefundProcessed, env.Event)
	require.NotNil(t, env.Data.Refund)
	assert.Equal(t, "rfnd_abc", env.Data.Refund.ID)
	assert.NotEmpty(t, env.Data.Refund.ProcessedAt)
}
