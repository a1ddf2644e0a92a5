package extract

import (
	"context"
	"testing"
	"time"

	"github.com/krysczajkowski/ytcomments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	policy := ytcomments.RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
	noJitter := func() float64 { return 0.5 }

	t.Run("returns the value on first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		value, failure := fetchWithRetry(context.Background(), policy, noJitter, func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})
		require.Nil(t, failure)
		assert.Equal(t, "ok", value)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failures until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		value, failure := fetchWithRetry(context.Background(), policy, noJitter, func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", &ytcomments.HTTPError{StatusCode: 503, URL: "https://example.com"}
			}
			return "ok", nil
		})
		require.Nil(t, failure)
		assert.Equal(t, "ok", value)
		assert.Equal(t, 3, calls)
	})

	t.Run("never retries permanent failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, failure := fetchWithRetry(context.Background(), policy, noJitter, func(context.Context) (string, error) {
			calls++
			return "", &ytcomments.HTTPError{StatusCode: 404, URL: "https://example.com"}
		})
		require.NotNil(t, failure)
		assert.Equal(t, ytcomments.FailurePermanent, failure.Class)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, failure.Attempts)
	})

	t.Run("exhausts the budget on persistent transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, failure := fetchWithRetry(context.Background(), policy, noJitter, func(context.Context) (string, error) {
			calls++
			return "", &ytcomments.HTTPError{StatusCode: 503, URL: "https://example.com"}
		})
		require.NotNil(t, failure)
		assert.Equal(t, ytcomments.FailureTransient, failure.Class)
		assert.Equal(t, 4, calls)
		assert.Equal(t, 4, failure.Attempts)
	})

	t.Run("blocked failures share the retry budget", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, failure := fetchWithRetry(context.Background(), policy, noJitter, func(context.Context) (string, error) {
			calls++
			return "", &ytcomments.HTTPError{StatusCode: 429, URL: "https://example.com"}
		})
		require.NotNil(t, failure)
		assert.Equal(t, ytcomments.FailureBlocked, failure.Class)
		assert.Equal(t, 4, calls)
	})

	t.Run("honors context cancellation during backoff", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		slow := ytcomments.RetryPolicy{MaxRetries: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}

		calls := 0
		_, failure := fetchWithRetry(ctx, slow, noJitter, func(context.Context) (string, error) {
			calls++
			cancel()
			return "", &ytcomments.HTTPError{StatusCode: 503, URL: "https://example.com"}
		})
		require.NotNil(t, failure)
		assert.ErrorIs(t, failure.Err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
