package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"time"

	"github.com/desertthunder/listbridge/internal/shared"
)

// RetryStatuses are the HTTP statuses worth retrying.
var RetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.Status, msg)
}

// Unwrap maps 401 to [shared.ErrAuthRequired] and everything else to [shared.ErrAPIRequest].
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return shared.ErrAuthRequired
	}
	return shared.ErrAPIRequest
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, shared.ErrAuthRequired) || errors.Is(err, shared.ErrNotSupported) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return slices.Contains(RetryStatuses, se.Status)
	}
	return true
}

// Backoff retries an operation with exponentially growing, jittered delays.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      time.Duration

	// OnRetry, if set, is called before each sleep.
	OnRetry func(err error, attempt int, delay time.Duration)
}

// DefaultBackoff allows 3 retries starting at 1.5s, capped at 60s, with up to 300ms jitter.
func DefaultBackoff() Backoff {
	return Backoff{MaxAttempts: 4, BaseDelay: 1500 * time.Millisecond, MaxDelay: time.Minute, Jitter: 300 * time.Millisecond}
}

// Delay returns the wait before retry number attempt (1-based), without jitter.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.BaseDelay
	for i := 1; i < attempt && d < b.MaxDelay; i++ {
		d *= 2
	}
	return min(d, b.MaxDelay)
}

// Do runs fn until it succeeds, returns a non-retryable error, or attempts run out.
func (b Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	maxAttempts := max(1, b.MaxAttempts)
	for attempt := 0; ; {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		attempt++
		if attempt >= maxAttempts || !Retryable(err) {
			return err
		}

		delay := b.Delay(attempt) + b.jitter()
		if b.OnRetry != nil {
			b.OnRetry(err, attempt, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (b Backoff) jitter() time.Duration {
	if b.Jitter <= 0 {
		return 0
	}
	return rand.N(b.Jitter)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
