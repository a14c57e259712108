package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/metrics"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
)

// PollTimeout bounds each blocking dequeue so the loop can observe
// cancellation between waits.
const PollTimeout = 5 * time.Second

// settleDelay gives the enqueuing request a moment to commit its record
// before the worker reads it back.
const settleDelay = 100 * time.Millisecond

// Handler processes one dequeued job body. A returned error means the job is
// logged and dropped; transaction-processing jobs are never requeued.
type Handler func(ctx context.Context, body []byte) error

// Run is the worker loop: blocking dequeue, process, repeat until ctx is
// cancelled. No single job's failure ever terminates the loop.
func Run(ctx context.Context, q queue.Queue, name string, h Handler, m *metrics.Metrics, logger *zap.Logger) {
	logger.Info("worker started", zap.String("queue", name))
	for {
		body, err := q.Dequeue(ctx, name, PollTimeout)
		if ctx.Err() != nil {
			logger.Info("worker stopped", zap.String("queue", name))
			return
		}
		if err != nil {
			logger.Error("dequeue failed", zap.String("queue", name), zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}
		if body == nil {
			continue
		}

		m.JobsProcessed.WithLabelValues(name).Inc()
		if err := h(ctx, body); err != nil && !errors.Is(err, context.Canceled) {
			m.JobsDropped.WithLabelValues(name).Inc()
			logger.Error("job dropped", zap.String("queue", name), zap.Error(err))
		}
	}
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
