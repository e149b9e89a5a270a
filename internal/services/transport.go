package services

import (
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestRate bounds outgoing requests per provider.
const DefaultRequestRate = 10

// Transport is an [http.RoundTripper] that rate limits requests and retries
// transport errors and [RetryStatuses] responses of idempotent requests.
// Writes are sent once and left to the caller's [Backoff].
type Transport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
	Retries int
	Backoff Backoff
}

// NewTransport wraps base with a limiter of rps requests per second and 3 retries.
func NewTransport(base http.RoundTripper, rps float64) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if rps <= 0 {
		rps = DefaultRequestRate
	}
	return &Transport{
		Base:    base,
		Limiter: rate.NewLimiter(rate.Limit(rps), 1),
		Retries: 3,
		Backoff: Backoff{BaseDelay: 1500 * time.Millisecond, MaxDelay: time.Minute, Jitter: 400 * time.Millisecond},
	}
}

// WrapClient returns a copy of c whose transport is wrapped by [NewTransport].
func WrapClient(c *http.Client, rps float64) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	wrapped := *c
	wrapped.Transport = NewTransport(c.Transport, rps)
	return &wrapped
}

// RoundTrip implements [http.RoundTripper].
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	for attempt := 1; ; attempt++ {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := t.Base.RoundTrip(req)
		last := attempt > t.Retries || !idempotent(req)
		switch {
		case err != nil:
			if last || ctx.Err() != nil {
				return nil, err
			}
		case slices.Contains(RetryStatuses, resp.StatusCode) && !last:
			wait := retryAfter(resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if wait > 0 {
				if err := sleep(ctx, wait); err != nil {
					return nil, err
				}
				continue
			}
		default:
			return resp, nil
		}

		if err := sleep(ctx, t.Backoff.Delay(attempt)+t.Backoff.jitter()); err != nil {
			return nil, err
		}
	}
}

// idempotent reports whether req can be replayed without side effects.
func idempotent(req *http.Request) bool {
	return req.Method == "" || req.Method == http.MethodGet || req.Method == http.MethodHead
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, time.Minute)
}
