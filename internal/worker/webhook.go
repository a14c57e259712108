package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/webhook"
)

// WebhookProcessor hands webhook jobs to the delivery engine.
type WebhookProcessor struct {
	Engine *webhook.Engine
}

func (p *WebhookProcessor) Process(ctx context.Context, body []byte) error {
	var job queue.WebhookJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("invalid webhook job body: %w", err)
	}
	sleep(ctx, settleDelay)
	return p.Engine.Deliver(ctx, job.WebhookLogID)
}
