package idempotency

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-payment-gateway/internal/store"
)

func TestStoreCacheRoundTrip(t *testing.T) {
	cache := NewStoreCache(store.NewMemory())
	ctx := context.Background()
	merchantID := uuid.New()
	response := json.RawMessage(`{"id":"pay_abc","status":"pending"}`)

	got, err := cache.Get(ctx, merchantID, "key-1")
	require.NoError(t, err)
	assert.Nil(t, got, "unknown key must be absent")

	require.NoError(t, cache.Put(ctx, merchantID, "key-1", response, 24*time.Hour))

	got, err = cache.Get(ctx, merchantID, "key-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(response), []byte(got), "replay must return the stored bytes verbatim")
}

func TestStoreCacheScopedToMerchant(t *testing.T) {
	cache := NewStoreCache(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, uuid.New(), "shared-key", json.RawMessage(`{"a":1}`), time.Hour))

	got, err := cache.Get(ctx, uuid.New(), "shared-key")
	require.NoError(t, err)
	assert.Nil(t, got, "another merchant's key must not be visible")
}

func TestStoreCacheExpiry(t *testing.T) {
	st := store.NewMemory()
	cache := NewStoreCache(st)
	ctx := context.Background()
	merchantID := uuid.New()

	now := time.Now()
	cache.nowFunc = func() time.Time { return now }
	require.NoError(t, cache.Put(ctx, merchantID, "key-1", json.RawMessage(`{"a":1}`), 24*time.Hour))

	// Just inside the TTL the entry is live.
	cache.nowFunc = func() time.Time { return now.Add(24*time.Hour - time.Second) }
	got, err := cache.Get(ctx, merchantID, "key-1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	// At the TTL boundary the entry is expired, treated as absent, and
	// purged from the backing store.
	cache.nowFunc = func() time.Time { return now.Add(24 * time.Hour) }
	got, err = cache.Get(ctx, merchantID, "key-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = st.GetIdempotencyKey(ctx, merchantID, "key-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
