package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
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
)

type engineFixture struct {
	store     *store.Memory
	queue     *queue.Memory
	scheduler *Scheduler
	engine    *Engine
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	st := store.NewMemory()
	q := queue.NewMemory()
	sched := NewScheduler(q, zap.NewNop())
	m := metrics.New(prometheus.NewRegistry())
	return &engineFixture{
		store:     st,
		queue:     q,
		scheduler: sched,
		engine:    NewEngine(st, q, sched, m, zap.NewNop(), true),
	}
}

func (f *engineFixture) createMerchant(t *testing.T, webhookURL string) *domain.Merchant {
	t.Helper()
	merchant := &domain.Merchant{
		ID:            uuid.New(),
		Name:          "Acme",
		APIKey:        "key_" + uuid.NewString(),
		WebhookURL:    webhookURL,
		WebhookSecret: "whsec_test",
		CreatedAt:     time.Now(),
	}
	require.NoError(t, f.store.CreateMerchant(context.Background(), merchant))
	return merchant
}

func (f *engineFixture) createLog(t *testing.T, merchantID uuid.UUID, payload string) *domain.WebhookLog {
	t.Helper()
	wl := &domain.WebhookLog{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Event:      domain.EventPaymentSuccess,
		Payload:    []byte(payload),
		Status:     domain.WebhookStatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, f.store.CreateWebhookLog(context.Background(), wl))
	return wl
}

func TestEngineDeliverSuccess(t *testing.T) {
	payload := `{"event":"payment.success"}`

	var gotBody string
	var gotSignature, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotSignature = r.Header.Get(SignatureHeader)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := newEngineFixture(t)
	merchant := f.createMerchant(t, srv.URL)
	wl := f.createLog(t, merchant.ID, payload)

	require.NoError(t, f.engine.Deliver(context.Background(), wl.ID))

	assert.Equal(t, payload, gotBody)
	assert.Equal(t, Sign([]byte(payload), merchant.WebhookSecret), gotSignature)
	assert.Equal(t, "application/json", gotContentType)

	stored, err := f.store.GetWebhookLog(context.Background(), wl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookStatusSuccess, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.Equal(t, http.StatusOK, stored.ResponseCode)
	assert.Equal(t, "ok", stored.ResponseBody)
	require.NotNil(t, stored.LastAttemptAt)
	assert.Nil(t, stored.NextRetryAt)
}

func TestEngineDeliverFailureSchedulesRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newEngineFixture(t)
	now := time.Now()
	f.engine.nowFunc = func() time.Time { return now }
	merchant := f.createMerchant(t, srv.URL)
	wl := f.createLog(t, merchant.ID, `{}`)

	require.NoError(t, f.engine.Deliver(context.Background(), wl.ID))

	stored, err := f.store.GetWebhookLog(context.Background(), wl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookStatusPending, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.Equal(t, http.StatusInternalServerError, stored.ResponseCode)
	require.NotNil(t, stored.NextRetryAt)
	assert.Equal(t, now.Add(RetryDelay(2, true)), *stored.NextRetryAt)
	assert.Equal(t, 1, f.scheduler.Pending())
}

func TestEngineDeliverExhaustsAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newEngineFixture(t)
	merchant := f.createMerchant(t, srv.URL)
	wl := f.createLog(t, merchant.ID, `{}`)

	ctx := context.Background()
	for i := 0; i < MaxAttempts; i++ {
		require.NoError(t, f.engine.Deliver(ctx, wl.ID))
	}

	stored, err := f.store.GetWebhookLog(ctx, wl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookStatusFailed, stored.Status)
	assert.Equal(t, MaxAttempts, stored.Attempts)
	// No sixth attempt was scheduled.
	assert.Equal(t, MaxAttempts-1, f.scheduler.Pending())

	// A further job for a terminal log is a no-op.
	require.NoError(t, f.engine.Deliver(ctx, wl.ID))
	stored, err = f.store.GetWebhookLog(ctx, wl.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxAttempts, stored.Attempts)
}

func TestEngineDeliverTransportError(t *testing.T) {
	f := newEngineFixture(t)
	merchant := f.createMerchant(t, "http://127.0.0.1:1") // nothing listens here
	wl := f.createLog(t, merchant.ID, `{}`)

	require.NoError(t, f.engine.Deliver(context.Background(), wl.ID))

	stored, err := f.store.GetWebhookLog(context.Background(), wl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookStatusPending, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.Zero(t, stored.ResponseCode)
	assert.NotEmpty(t, stored.ResponseBody)
}

func TestEngineNoWebhookURLFinishesWithoutAttempt(t *testing.T) {
	f := newEngineFixture(t)
	merchant := f.createMerchant(t, "")
	wl := f.createLog(t, merchant.ID, `{}`)

	require.NoError(t, f.engine.Deliver(context.Background(), wl.ID))

	stored, err := f.store.GetWebhookLog(context.Background(), wl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookStatusSuccess, stored.Status)
	assert.Zero(t, stored.Attempts)
	assert.Nil(t, stored.LastAttemptAt)
}

func TestEngineDropsDuplicateInFlightJob(t *testing.T) {
	f := newEngineFixture(t)
	merchant := f.createMerchant(t, "http://unused.invalid")
	wl := f.createLog(t, merchant.ID, `{}`)

	require.True(t, f.engine.acquire(wl.ID))
	defer f.engine.release(wl.ID)

	// The log stays untouched while another delivery holds the guard.
	require.NoError(t, f.engine.Deliver(context.Background(), wl.ID))

	stored, err := f.store.GetWebhookLog(context.Background(), wl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookStatusPending, stored.Status)
	assert.Zero(t, stored.Attempts)
}

func TestEngineMissingLogIsAnError(t *testing.T) {
	f := newEngineFixture(t)
	err := f.engine.Deliver(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
