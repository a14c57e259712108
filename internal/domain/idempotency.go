package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey memoizes the exact response returned for one logical
// payment-creation request, scoped to a merchant. While unexpired, replays
// of the same key return Response verbatim; an expired entry is treated as
// absent.
type IdempotencyKey struct {
	Key        string          `json:"key"`
	MerchantID uuid.UUID       `json:"merchant_id"`
	Response   json.RawMessage `json:"response"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
}
