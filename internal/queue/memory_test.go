package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFIFOPerQueue(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, PaymentJobs, []byte("a")))
	require.NoError(t, q.Enqueue(ctx, PaymentJobs, []byte("b")))
	require.NoError(t, q.Enqueue(ctx, RefundJobs, []byte("r1")))

	body, err := q.Dequeue(ctx, PaymentJobs, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "a", string(body))

	body, err = q.Dequeue(ctx, PaymentJobs, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "b", string(body))

	// Queues are independent streams.
	body, err = q.Dequeue(ctx, RefundJobs, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "r1", string(body))
}

func TestMemoryDequeueTimeout(t *testing.T) {
	q := NewMemory()

	start := time.Now()
	body, err := q.Dequeue(context.Background(), WebhookJobs, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, body)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestMemoryDequeueContextCancelled(t *testing.T) {
	q := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx, PaymentJobs, time.Minute)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not observe cancellation")
	}
}

func TestMemoryPending(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	n, err := q.Pending(ctx, PaymentJobs)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, q.Enqueue(ctx, PaymentJobs, []byte("a")))
	require.NoError(t, q.Enqueue(ctx, PaymentJobs, []byte("b")))

	n, err = q.Pending(ctx, PaymentJobs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEnqueueJobHelpers(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	require.NoError(t, EnqueuePaymentJob(ctx, q, "pay_abc"))
	body, err := q.Dequeue(ctx, PaymentJobs, time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"payment_id":"pay_abc"}`, string(body))
}
