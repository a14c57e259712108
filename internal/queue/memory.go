package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const memoryQueueCapacity = 1024

// Memory is a channel-backed Queue for dev mode and tests.
type Memory struct {
	mu     sync.Mutex
	queues map[string]chan []byte
}

func NewMemory() *Memory {
	return &Memory{queues: make(map[string]chan []byte)}
}

func (m *Memory) channel(name string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.queues[name]
	if !ok {
		ch = make(chan []byte, memoryQueueCapacity)
		m.queues[name] = ch
	}
	return ch
}

func (m *Memory) Enqueue(_ context.Context, name string, body []byte) error {
	select {
	case m.channel(name) <- body:
		return nil
	default:
		return fmt.Errorf("queue %s is full", name)
	}
}

func (m *Memory) Dequeue(ctx context.Context, name string, wait time.Duration) ([]byte, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case body := <-m.channel(name):
		return body, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Memory) Pending(_ context.Context, name string) (int, error) {
	return len(m.channel(name)), nil
}
