package webhook

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/queue"
)

// Scheduler is a delay queue: jobs handed to Schedule are pushed back onto
// their queue once their delay elapses. A single goroutine drains a min-heap
// ordered by due time, so retry volume never grows the goroutine count.
type Scheduler struct {
	q       queue.Queue
	logger  *zap.Logger
	nowFunc func() time.Time

	mu   sync.Mutex
	jobs jobHeap
	wake chan struct{}
}

type scheduledJob struct {
	at   time.Time
	name string
	body []byte
}

type jobHeap []scheduledJob

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any)         { *h = append(*h, x.(scheduledJob)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	*h = old[:n-1]
	return job
}

func NewScheduler(q queue.Queue, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		q:       q,
		logger:  logger,
		nowFunc: time.Now,
		wake:    make(chan struct{}, 1),
	}
}

// Schedule registers body for re-enqueue on the named queue after delay.
func (s *Scheduler) Schedule(name string, body []byte, delay time.Duration) {
	s.mu.Lock()
	heap.Push(&s.jobs, scheduledJob{at: s.nowFunc().Add(delay), name: name, body: body})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many jobs are waiting for their due time.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.Len()
}

// Run drains due jobs until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		s.mu.Lock()
		if s.jobs.Len() == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-ctx.Done():
				return
			}
		}

		next := s.jobs[0]
		wait := next.at.Sub(s.nowFunc())
		if wait <= 0 {
			heap.Pop(&s.jobs)
			s.mu.Unlock()
			if err := s.q.Enqueue(ctx, next.name, next.body); err != nil {
				s.logger.Error("re-enqueue of scheduled job failed",
					zap.String("queue", next.name), zap.Error(err))
			}
			continue
		}
		s.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.wake:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
