package probe

import (
	"context"
	"time"
)

// RetryPolicy is a bounded fixed-delay retry. Attempts counts the initial
// try, so Attempts=3 means up to two retries.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// Retrier decorates a Prober with a RetryPolicy. Only indeterminate results
// are retried; 200 and 404 (and other terminal codes) return immediately.
// When attempts are exhausted the result collapses to unavailable, so the
// caller always sees a definite answer.
type Retrier struct {
	Inner  Prober
	Policy RetryPolicy
}

func (r *Retrier) Probe(ctx context.Context, appID, region string) Result {
	attempts := r.Policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last Result
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				last.Message = last.Message + " (interrupted)"
				last.Status = StatusUnavailable
				return last
			case <-time.After(r.Policy.Delay):
			}
		}
		last = r.Inner.Probe(ctx, appID, region)
		if last.Status != StatusIndeterminate {
			return last
		}
	}

	last.Message = last.Message + " (after retries)"
	last.Status = StatusUnavailable
	return last
}
