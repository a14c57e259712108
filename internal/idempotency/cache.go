package idempotency

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cache maps a (merchant, client-supplied key) pair to the exact serialized
// response previously returned. Get returns (nil, nil) for an absent or
// expired entry and may purge expired entries opportunistically. Put is
// called only after the transaction has been durably created, so the cache
// is a response memo, not a lock: two identical requests racing before the
// first Put may still create distinct transactions.
type Cache interface {
	Get(ctx context.Context, merchantID uuid.UUID, key string) (json.RawMessage, error)
	Put(ctx context.Context, merchantID uuid.UUID, key string, response json.RawMessage, ttl time.Duration) error
}
