package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/listbridge/internal/shared"
)

func TestStatusError(t *testing.T) {
	t.Run("401 unwraps to auth required", func(t *testing.T) {
		err := error(&StatusError{Provider: "spotify", Status: http.StatusUnauthorized})
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
	})

	t.Run("other statuses unwrap to api request", func(t *testing.T) {
		err := error(&StatusError{Provider: "youtube", Status: http.StatusBadRequest, Message: "bad"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if err.Error() != "youtube API error 400: bad" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})
}

func TestRetryable(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"auth", &StatusError{Status: http.StatusUnauthorized}, false},
		{"not supported", shared.ErrNotSupported, false},
		{"rate limited", &StatusError{Status: http.StatusTooManyRequests}, true},
		{"bad gateway", fmt.Errorf("wrapped: %w", &StatusError{Status: http.StatusBadGateway}), true},
		{"forbidden", &StatusError{Status: http.StatusForbidden}, false},
		{"network", errors.New("connection reset"), true},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	t.Run("Delay doubles and caps", func(t *testing.T) {
		b := DefaultBackoff()
		want := []time.Duration{1500 * time.Millisecond, 3 * time.Second, 6 * time.Second, 12 * time.Second}
		for i, w := range want {
			if got := b.Delay(i + 1); got != w {
				t.Errorf("attempt %d: expected %v, got %v", i+1, w, got)
			}
		}
		if got := b.Delay(10); got != time.Minute {
			t.Errorf("expected cap of 1m, got %v", got)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		var retries []int
		b := Backoff{MaxAttempts: 5, OnRetry: func(_ error, attempt int, _ time.Duration) { retries = append(retries, attempt) }}
		calls := 0
		err := b.Do(context.Background(), func(int) error {
			calls++
			if calls < 3 {
				return &StatusError{Status: http.StatusServiceUnavailable}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
		if len(retries) != 2 {
			t.Errorf("expected 2 retries, got %v", retries)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		b := Backoff{MaxAttempts: 3}
		calls := 0
		err := b.Do(context.Background(), func(int) error {
			calls++
			return &StatusError{Status: http.StatusTooManyRequests}
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("does not retry auth errors", func(t *testing.T) {
		b := Backoff{MaxAttempts: 5}
		calls := 0
		err := b.Do(context.Background(), func(int) error {
			calls++
			return &StatusError{Status: http.StatusUnauthorized}
		})
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		b := Backoff{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
		calls := 0
		err := b.Do(ctx, func(int) error {
			calls++
			cancel()
			return errors.New("transient")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})
}
