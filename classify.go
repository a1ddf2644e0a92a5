package ytcomments

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"time"
)

// FailureClass buckets a failed network operation for retry and reporting
// purposes.
type FailureClass string

// FailureClass constants.
const (
	// FailurePermanent is a video-level terminal condition. Never retried.
	FailurePermanent FailureClass = "permanent"

	// FailureBlocked is an anti-bot response. Retried on the same budget
	// as transient failures; distinguished only for observability.
	FailureBlocked FailureClass = "blocked"

	// FailureTransient is a recoverable failure, and the default bucket
	// for anything unrecognized so unknown failures still get retried.
	FailureTransient FailureClass = "transient"
)

// Message patterns per class, matched case-insensitively against the error
// text when the status code alone is not decisive.
var (
	permanentPattern = regexp.MustCompile(`(?i)disabled|private|unavailable|age.restricted|not found`)
	blockedPattern   = regexp.MustCompile(`(?i)captcha|bot.detected|too many requests|access denied`)
	transientPattern = regexp.MustCompile(`(?i)timeout|timed out|deadline exceeded|connection reset|connection refused|temporar`)
)

// Classify buckets a failure by HTTP status code and error message.
// A zero status code means the request never produced a response.
// Precedence follows the first matching rule:
//
//	404 or a disabled/private/unavailable message  -> Permanent
//	403/429 or a captcha/bot message               -> Blocked
//	5xx or a timeout/connection-reset message      -> Transient
//	anything else                                  -> Transient
func Classify(statusCode int, message string) FailureClass {
	switch {
	case statusCode == 404 || permanentPattern.MatchString(message):
		return FailurePermanent
	case statusCode == 403 || statusCode == 429 || blockedPattern.MatchString(message):
		return FailureBlocked
	case statusCode >= 500 || transientPattern.MatchString(message):
		return FailureTransient
	default:
		return FailureTransient
	}
}

// ClassifyError buckets an error, pulling the status code out of an
// HTTPError when the error chain carries one.
func ClassifyError(err error) FailureClass {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return Classify(httpErr.StatusCode, err.Error())
	}
	return Classify(0, err.Error())
}

// RetryPolicy is the injected retry configuration shared by every wrapped
// network call. Swapping profiles must never require touching call sites.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BaseDelay is the backoff delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Jitter is the total width of the multiplicative jitter band; the
	// delay is scaled by a factor drawn uniformly from
	// [1-Jitter/2, 1+Jitter/2].
	Jitter float64
}

// DefaultRetryPolicy returns the safe/slow profile.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Jitter:     0.2,
	}
}

// FastRetryPolicy returns the fast profile: a single short retry, for runs
// where throughput matters more than completeness.
func FastRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 1,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Jitter:     0.2,
	}
}

// Delay computes the jittered backoff delay before retry number attempt
// (0-based). The random source is injectable for tests; nil uses the
// default package source.
func (p RetryPolicy) Delay(attempt int, rnd func() float64) time.Duration {
	if rnd == nil {
		rnd = rand.Float64
	}

	delay := p.BaseDelay << attempt
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}

	factor := 1 + p.Jitter*(rnd()-0.5)
	return time.Duration(float64(delay) * factor)
}
