package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/metrics"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
	"github.com/imrishuroy/go-payment-gateway/internal/webhook"
)

type workerFixture struct {
	store *store.Memory
	queue *queue.Memory
}

func newWorkerFixture() *workerFixture {
	return &workerFixture{store: store.NewMemory(), queue: queue.NewMemory()}
}

func (f *workerFixture) paymentProcessor(success bool) *PaymentProcessor {
	return &PaymentProcessor{
		Store:   f.store,
		Emitter: webhook.NewEmitter(f.store, f.queue, zap.NewNop()),
		Outcome: FixedOutcome{Success: success},
		Delay:   FixedDelay(0),
		Metrics: metrics.New(prometheus.NewRegistry()),
		Logger:  zap.NewNop(),
	}
}

func (f *workerFixture) createMerchant(t *testing.T) *domain.Merchant {
	t.Helper()
	merchant := &domain.Merchant{ID: uuid.New(), WebhookURL: "https://example.com/hook"}
	require.NoError(t, f.store.CreateMerchant(context.Background(), merchant))
	return merchant
}

func (f *workerFixture) createPayment(t *testing.T, merchantID uuid.UUID, method string) *domain.Payment {
	t.Helper()
	payment := &domain.Payment{
		ID:         "pay_" + uuid.NewString()[:8],
		OrderID:    "order_abc",
		MerchantID: merchantID,
		Amount:     1000,
		Currency:   "INR",
		Method:     method,
		Status:     domain.PaymentStatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, f.store.CreatePayment(context.Background(), payment))
	return payment
}

func paymentJobBody(t *testing.T, paymentID string) []byte {
	t.Helper()
	body, err := json.Marshal(queue.PaymentJob{PaymentID: paymentID})
	require.NoError(t, err)
	return body
}

func (f *workerFixture) emittedEvent(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	body, err := f.queue.Dequeue(ctx, queue.WebhookJobs, time.Second)
	require.NoError(t, err)
	require.NotNil(t, body, "expected a webhook job")
	var job queue.WebhookJob
	require.NoError(t, json.Unmarshal(body, &job))
	wl, err := f.store.GetWebhookLog(ctx, job.WebhookLogID)
	require.NoError(t, err)
	return wl.Event
}

func TestPaymentProcessorSuccess(t *testing.T) {
	f := newWorkerFixture()
	merchant := f.createMerchant(t)
	payment := f.createPayment(t, merchant.ID, domain.MethodUPI)

	proc := f.paymentProcessor(true)
	require.NoError(t, proc.Process(context.Background(), paymentJobBody(t, payment.ID)))

	stored, err := f.store.GetPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, stored.Status)
	assert.Empty(t, stored.ErrorCode)
	assert.Equal(t, domain.EventPaymentSuccess, f.emittedEvent(t))
}

func TestPaymentProcessorFailure(t *testing.T) {
	f := newWorkerFixture()
	merchant := f.createMerchant(t)
	payment := f.createPayment(t, merchant.ID, domain.MethodCard)

	proc := f.paymentProcessor(false)
	require.NoError(t, proc.Process(context.Background(), paymentJobBody(t, payment.ID)))

	stored, err := f.store.GetPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, stored.Status)
	assert.Equal(t, "PAYMENT_FAILED", stored.ErrorCode)
	assert.Equal(t, "Payment processing failed", stored.ErrorDescription)
	assert.Equal(t, domain.EventPaymentFailed, f.emittedEvent(t))
}

func TestPaymentProcessorMissingPayment(t *testing.T) {
	f := newWorkerFixture()
	proc := f.paymentProcessor(true)

	err := proc.Process(context.Background(), paymentJobBody(t, "pay_missing"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	// No webhook for a job that never found its payment.
	n, qErr := f.queue.Pending(context.Background(), queue.WebhookJobs)
	require.NoError(t, qErr)
	assert.Zero(t, n)
}

func TestPaymentProcessorInvalidBody(t *testing.T) {
	f := newWorkerFixture()
	proc := f.paymentProcessor(true)

	err := proc.Process(context.Background(), []byte("not json"))
	assert.Error(t, err)
}
