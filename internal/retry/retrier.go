package retry

import (
	"context"
	"time"
)

// Classifier reports whether an error is worth retrying.
type Classifier func(err error) bool

// Retrier runs operations under a Policy.
// Safe for concurrent use.
type Retrier struct {
	policy    Policy
	transient Classifier
	onRetry   func(attempt int, err error, delay time.Duration)
}

// New creates a retrier.
//
// Panics if transient is nil.
func New(policy Policy, transient Classifier) *Retrier {
	if transient == nil {
		panic("classifier cannot be nil")
	}
	return &Retrier{policy: policy, transient: transient}
}

// OnRetry returns a copy of r that calls fn before each wait.
func (r *Retrier) OnRetry(fn func(attempt int, err error, delay time.Duration)) *Retrier {
	clone := *r
	clone.onRetry = fn
	return &clone
}

// Do runs op until it succeeds, fails with a non-transient error, the retries
// are exhausted or ctx is done. It returns the last error.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	for attempt := 0; err != nil && r.transient(err) && attempt < r.policy.Retries; attempt++ {
		delay := r.policy.Delay(attempt)
		if r.onRetry != nil {
			r.onRetry(attempt+1, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = op(ctx)
	}
	return err
}
