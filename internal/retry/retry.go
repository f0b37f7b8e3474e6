// Package retry wraps fallible operations with exponential backoff and
// jitter. It is domain-agnostic: callers supply the operation and an
// optional retryability classifier.
package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tobyfield/glint/internal/debug"
)

// Options control a single retry run. The zero value is not useful; use
// DefaultOptions as a base.
type Options struct {
	MaxRetries  uint          // retries after the first attempt (total attempts = MaxRetries+1)
	BaseDelay   time.Duration // first backoff interval
	MaxDelay    time.Duration // backoff interval ceiling
	Jitter      float64       // randomization factor in [0,1); 0.3 adds up to +/-30%
	IsRetryable func(error) bool
	OnRetry     func(attempt uint, err error, delay time.Duration)
}

// DefaultOptions match the tuning used for tracker and model calls.
func DefaultOptions() Options {
	return Options{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Jitter:     0.3,
	}
}

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// Retryable is the default classifier: HTTP 429 and 5xx, network timeouts,
// and transient-looking error messages are retryable; everything else
// (notably auth failures) is not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		status := sc.HTTPStatus()
		return status == 429 || status >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit",
		"too many requests",
		"timeout",
		"timed out",
		"connection refused",
		"connection reset",
		"broken pipe",
		"temporarily unavailable",
		"i/o timeout",
		"no such host",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// newBackoff builds a fresh backoff policy for one run.
// BackOff implementations are stateful; never share instances.
func newBackoff(opts Options) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opts.BaseDelay
	bo.MaxInterval = opts.MaxDelay
	bo.RandomizationFactor = opts.Jitter
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock
	bo.Reset()
	return backoff.WithMaxRetries(bo, uint64(opts.MaxRetries))
}

// Do runs op until it succeeds, fails with a non-retryable error, or
// exhausts opts.MaxRetries. The last error is returned unwrapped so
// callers can still classify it.
func Do[T any](ctx context.Context, opts Options, op func() (T, error)) (T, error) {
	var result T

	classify := opts.IsRetryable
	if classify == nil {
		classify = Retryable
	}

	var attempt uint
	err := backoff.RetryNotify(
		func() error {
			r, err := op()
			if err == nil {
				result = r
				return nil
			}
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if !classify(err) {
				return backoff.Permanent(err)
			}
			return err
		},
		backoff.WithContext(newBackoff(opts), ctx),
		func(err error, delay time.Duration) {
			attempt++
			debug.Logf("retry: attempt %d failed (%v), backing off %s\n", attempt, err, delay)
			if opts.OnRetry != nil {
				opts.OnRetry(attempt, err, delay)
			}
		},
	)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
