package worker

import (
	"math/rand"
	"time"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
)

// OutcomeDecider decides whether a simulated settlement succeeds. Production
// and test profiles are two implementations rather than flag checks spread
// through the worker.
type OutcomeDecider interface {
	Decide(method string) bool
}

// FixedOutcome always returns the configured result. Test mode.
type FixedOutcome struct {
	Success bool
}

func (f FixedOutcome) Decide(string) bool { return f.Success }

// RandomOutcome models per-method acquirer success rates: 90% for UPI, 95%
// for cards.
type RandomOutcome struct{}

func (RandomOutcome) Decide(method string) bool {
	if method == domain.MethodUPI {
		return rand.Float64() < 0.90
	}
	return rand.Float64() < 0.95
}

// DelayFunc produces the simulated settlement latency for one job.
type DelayFunc func() time.Duration

// FixedDelay is the test-mode profile.
func FixedDelay(d time.Duration) DelayFunc {
	return func() time.Duration { return d }
}

// RandomDelay picks uniformly from [min, max].
func RandomDelay(min, max time.Duration) DelayFunc {
	return func() time.Duration {
		return min + time.Duration(rand.Int63n(int64(max-min)+1))
	}
}
