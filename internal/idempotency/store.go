package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
)

// StoreCache keeps idempotency entries in the entity store, alongside the
// transactions they memoize.
type StoreCache struct {
	store   store.Store
	nowFunc func() time.Time
}

func NewStoreCache(s store.Store) *StoreCache {
	return &StoreCache{store: s, nowFunc: time.Now}
}

func (c *StoreCache) Get(ctx context.Context, merchantID uuid.UUID, key string) (json.RawMessage, error) {
	rec, err := c.store.GetIdempotencyKey(ctx, merchantID, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	if !rec.ExpiresAt.After(c.nowFunc()) {
		// Expired entries are inert; purge lazily.
		_ = c.store.DeleteIdempotencyKey(ctx, merchantID, key)
		return nil, nil
	}
	return rec.Response, nil
}

func (c *StoreCache) Put(ctx context.Context, merchantID uuid.UUID, key string, response json.RawMessage, ttl time.Duration) error {
	now := c.nowFunc()
	rec := &domain.IdempotencyKey{
		Key:        key,
		MerchantID: merchantID,
		Response:   response,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := c.store.PutIdempotencyKey(ctx, rec); err != nil {
		return fmt.Errorf("put idempotency key: %w", err)
	}
	return nil
}
