package extract

import (
	"context"
	"time"

	"github.com/krysczajkowski/ytcomments"
)

// Failure is the terminal outcome of a fetch whose retry budget ran out.
// It is a value the pagination loop branches on, not an exception: a
// wrapped fetch never lets an error escape any other way.
type Failure struct {
	Err      error
	Class    ytcomments.FailureClass
	Attempts int
}

// fetchWithRetry runs op until it succeeds or the policy is exhausted.
// Permanent failures are never retried; Blocked and Transient share the
// same budget. Backoff between attempts is exponential with jitter, and
// the context is honored while sleeping.
func fetchWithRetry[T any](ctx context.Context, policy ytcomments.RetryPolicy, rnd func() float64, op func(context.Context) (T, error)) (T, *Failure) {
	var zero T
	var lastErr error
	var lastClass ytcomments.FailureClass

	attempts := 0
	for attempt := 0; ; attempt++ {
		value, err := op(ctx)
		attempts++
		if err == nil {
			return value, nil
		}

		lastErr = err
		lastClass = ytcomments.ClassifyError(err)

		if lastClass == ytcomments.FailurePermanent || attempt >= policy.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return zero, &Failure{
				Err:      ctx.Err(),
				Class:    ytcomments.ClassifyError(ctx.Err()),
				Attempts: attempts,
			}
		case <-time.After(policy.Delay(attempt, rnd)):
		}
	}

	return zero, &Failure{Err: lastErr, Class: lastClass, Attempts: attempts}
}
