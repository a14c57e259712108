package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/metrics"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
)

// ClientTimeout bounds one delivery attempt end to end.
const ClientTimeout = 5 * time.Second

const maxResponseBody = 64 * 1024

// Engine drives the delivery state machine for webhook logs: sign, POST,
// record the response, and either finish the log or schedule the next
// attempt. One log is processed by at most one Deliver call at a time; a
// duplicate job for an in-flight log is dropped.
type Engine struct {
	store     store.Store
	queue     queue.Queue
	scheduler *Scheduler
	client    *http.Client
	logger    *zap.Logger
	metrics   *metrics.Metrics
	fastRetry bool
	nowFunc   func() time.Time

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewEngine(s store.Store, q queue.Queue, sched *Scheduler, m *metrics.Metrics, logger *zap.Logger, fastRetry bool) *Engine {
	return &Engine{
		store:     s,
		queue:     q,
		scheduler: sched,
		client:    &http.Client{Timeout: ClientTimeout},
		logger:    logger,
		metrics:   m,
		fastRetry: fastRetry,
		nowFunc:   time.Now,
		inFlight:  make(map[uuid.UUID]struct{}),
	}
}

func (e *Engine) acquire(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, held := e.inFlight[id]; held {
		return false
	}
	e.inFlight[id] = struct{}{}
	return true
}

func (e *Engine) release(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, id)
}

// Deliver performs one delivery attempt for the given log.
func (e *Engine) Deliver(ctx context.Context, logID uuid.UUID) error {
	if !e.acquire(logID) {
		e.logger.Warn("dropping duplicate webhook job for in-flight log",
			zap.String("webhook_log_id", logID.String()))
		return nil
	}
	defer e.release(logID)

	wl, err := e.store.GetWebhookLog(ctx, logID)
	if err != nil {
		return fmt.Errorf("fetch webhook log %s: %w", logID, err)
	}
	if wl.Status != domain.WebhookStatusPending {
		// A stale retry racing a finished log; nothing left to do.
		return nil
	}

	merchant, err := e.store.GetMerchant(ctx, wl.MerchantID)
	if err != nil {
		return fmt.Errorf("fetch merchant %s: %w", wl.MerchantID, err)
	}

	// Merchants without an endpoint have opted out; finish the log so it
	// never enters the retry loop.
	if merchant.WebhookURL == "" {
		wl.Status = domain.WebhookStatusSuccess
		if err := e.store.UpdateWebhookLog(ctx, wl); err != nil {
			return fmt.Errorf("update webhook log %s: %w", wl.ID, err)
		}
		e.logger.Info("webhook URL not configured, skipping delivery",
			zap.String("merchant_id", merchant.ID.String()),
			zap.String("webhook_log_id", wl.ID.String()))
		return nil
	}

	now := e.nowFunc()
	wl.Attempts++
	wl.LastAttemptAt = &now
	e.metrics.WebhookAttempts.Inc()

	code, body, sendErr := e.send(ctx, merchant, wl.Payload)
	wl.ResponseCode = code
	wl.ResponseBody = body

	if sendErr == nil && code >= 200 && code < 300 {
		wl.Status = domain.WebhookStatusSuccess
		e.metrics.WebhookDelivered.Inc()
		e.logger.Info("webhook delivered",
			zap.String("webhook_log_id", wl.ID.String()),
			zap.Int("attempts", wl.Attempts))
	} else {
		if sendErr != nil {
			wl.ResponseBody = sendErr.Error()
		}
		e.handleFailedAttempt(wl)
	}

	if err := e.store.UpdateWebhookLog(ctx, wl); err != nil {
		return fmt.Errorf("update webhook log %s: %w", wl.ID, err)
	}
	return nil
}

func (e *Engine) send(ctx context.Context, merchant *domain.Merchant, payload []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, merchant.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(payload, merchant.WebhookSecret))

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

// handleFailedAttempt applies the retry policy after a non-2xx response,
// timeout, or transport error.
func (e *Engine) handleFailedAttempt(wl *domain.WebhookLog) {
	if wl.Attempts >= MaxAttempts {
		wl.Status = domain.WebhookStatusFailed
		e.metrics.WebhookFailed.Inc()
		e.logger.Warn("webhook failed permanently",
			zap.String("webhook_log_id", wl.ID.String()),
			zap.Int("attempts", wl.Attempts))
		return
	}

	delay := RetryDelay(wl.Attempts+1, e.fastRetry)
	next := e.nowFunc().Add(delay)
	wl.Status = domain.WebhookStatusPending
	wl.NextRetryAt = &next

	body, err := json.Marshal(queue.WebhookJob{WebhookLogID: wl.ID})
	if err != nil {
		e.logger.Error("marshal webhook retry job", zap.Error(err))
		return
	}
	e.scheduler.Schedule(queue.WebhookJobs, body, delay)
	e.logger.Info("scheduled webhook retry",
		zap.String("webhook_log_id", wl.ID.String()),
		zap.Int("next_attempt", wl.Attempts+1),
		zap.Duration("delay", delay))
}
