package wgapi

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxAttempts is the attempt budget used when none is configured
const DefaultMaxAttempts = 3

// RetryPolicy bounds how often a fetch is attempted. Only remote API errors
// are retried; network and decoding failures surface on the first attempt.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used by a zero-configured Client
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
	}
}

// WithAttempts returns a copy of the policy with a different attempt budget
func (p RetryPolicy) WithAttempts(attempts int) RetryPolicy {
	p.MaxAttempts = attempts
	return p
}

// Do runs op until it succeeds, fails with a non-retryable error or the
// attempt budget is spent. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, op func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op(attempt)
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(p.backOff(), uint64(attempts-1)), ctx))
}

func (p RetryPolicy) backOff() backoff.BackOff {
	if p.InitialInterval <= 0 {
		return &backoff.ZeroBackOff{}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	// the attempt budget bounds the loop, not elapsed time
	b.MaxElapsedTime = 0
	return b
}
