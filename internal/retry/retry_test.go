package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type statusErr struct {
	status int
}

func (e *statusErr) Error() string   { return fmt.Sprintf("status %d", e.status) }
func (e *statusErr) HTTPStatus() int { return e.status }

func fastOptions() Options {
	opts := DefaultOptions()
	opts.BaseDelay = time.Millisecond
	opts.MaxDelay = 5 * time.Millisecond
	return opts
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	got, err := Do(context.Background(), fastOptions(), func() (string, error) {
		attempts++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q, want %q", got, "ok")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	got, err := Do(context.Background(), fastOptions(), func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, &statusErr{status: 429}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoBoundedAttempts(t *testing.T) {
	opts := fastOptions()
	opts.MaxRetries = 3

	attempts := 0
	_, err := Do(context.Background(), opts, func() (struct{}, error) {
		attempts++
		return struct{}{}, &statusErr{status: 503}
	})
	if err == nil {
		t.Fatal("Do succeeded, want exhaustion error")
	}
	// maxRetries=3 means at most 4 total attempts.
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
}

func TestDoNonRetryableShortCircuit(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), fastOptions(), func() (struct{}, error) {
		attempts++
		return struct{}{}, &statusErr{status: 401}
	})
	if err == nil {
		t.Fatal("Do succeeded, want 401 error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want exactly 1 for a non-retryable error", attempts)
	}

	var sc StatusCoder
	if !errors.As(err, &sc) || sc.HTTPStatus() != 401 {
		t.Errorf("err = %v, want the original 401 error", err)
	}
}

func TestDoOnRetryHook(t *testing.T) {
	opts := fastOptions()
	opts.MaxRetries = 2

	var notified []uint
	opts.OnRetry = func(attempt uint, err error, delay time.Duration) {
		notified = append(notified, attempt)
	}

	_, _ = Do(context.Background(), opts, func() (struct{}, error) {
		return struct{}{}, &statusErr{status: 500}
	})

	// 3 attempts total, 2 backoffs between them; never notified after the
	// final attempt.
	if len(notified) != 2 {
		t.Fatalf("OnRetry fired %d times, want 2", len(notified))
	}
	if notified[0] != 1 || notified[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", notified)
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	_, err := Do(ctx, fastOptions(), func() (struct{}, error) {
		attempts++
		cancel()
		return struct{}{}, &statusErr{status: 500}
	})
	if err == nil {
		t.Fatal("Do succeeded, want cancellation error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 after cancellation", attempts)
	}
}

func TestRetryableClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &statusErr{429}, true},
		{"500", &statusErr{500}, true},
		{"503", &statusErr{503}, true},
		{"401", &statusErr{401}, false},
		{"404", &statusErr{404}, false},
		{"rate limit message", errors.New("rate limit exceeded"), true},
		{"timeout message", errors.New("request timed out"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"auth message", errors.New("invalid api key"), false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
