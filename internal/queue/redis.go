package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Queue on Redis lists: LPUSH to enqueue, BRPOP to block
// on dequeue, LLEN for the pending count. This is the production backend.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Enqueue(ctx context.Context, name string, body []byte) error {
	if err := r.client.LPush(ctx, name, body).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", name, err)
	}
	return nil
}

func (r *Redis) Dequeue(ctx context.Context, name string, wait time.Duration) ([]byte, error) {
	res, err := r.client.BRPop(ctx, wait, name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("brpop %s: %w", name, err)
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("brpop %s: unexpected reply length %d", name, len(res))
	}
	return []byte(res[1]), nil
}

func (r *Redis) Pending(ctx context.Context, name string) (int, error) {
	n, err := r.client.LLen(ctx, name).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", name, err)
	}
	return int(n), nil
}
