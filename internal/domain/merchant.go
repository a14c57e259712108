package domain

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is a tenant of the gateway. API credentials authenticate inbound
// requests; the webhook URL and secret configure outbound notifications. A
// merchant with an empty WebhookURL has opted out of webhooks.
type Merchant struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	APIKey        string    `json:"api_key"`
	APISecret     string    `json:"api_secret"`
	WebhookURL    string    `json:"webhook_url"`
	WebhookSecret string    `json:"webhook_secret"`
	CreatedAt     time.Time `json:"created_at"`
}
