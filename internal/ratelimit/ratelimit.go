// Package ratelimit retries HTTP requests rejected with 429, with
// exponential backoff. The Telegram API throttles bots that reply too
// quickly in busy group chats; retrying inside the transport keeps that
// invisible to the bot loop.
package ratelimit

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

const (
	// DefaultMaxRetries is the retry budget per request
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the delay before the first retry
	DefaultBaseDelay = time.Second
	// DefaultMaxDelay caps the backoff growth
	DefaultMaxDelay = 30 * time.Second
)

// Config holds retry behavior for the transport
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Jitter spreads retries by up to 20% to avoid synchronized bursts
	Jitter bool
}

// Transport is an http.RoundTripper that retries 429 responses. Requests
// without a replayable body are never retried.
type Transport struct {
	base http.RoundTripper
	cfg  Config
}

// NewTransport wraps base with 429 retry handling. A nil base uses
// http.DefaultTransport.
func NewTransport(base http.RoundTripper, cfg Config) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	return &Transport{base: base, cfg: cfg}
}

// NewClient returns an http.Client with retrying transport and the given
// overall timeout.
func NewClient(timeout time.Duration, cfg Config) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(nil, cfg),
	}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusTooManyRequests {
		return resp, err
	}

	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	for attempt := 1; attempt <= t.cfg.MaxRetries; attempt++ {
		delay := t.delayFor(attempt, resp)
		_ = resp.Body.Close()

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}

		retry := req.Clone(req.Context())
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to replay request body: %w", err)
			}
			retry.Body = body
		}

		resp, err = t.base.RoundTrip(retry)
		if err != nil || resp.StatusCode != http.StatusTooManyRequests {
			return resp, err
		}
	}

	// Out of retries, hand the final 429 back to the caller
	return resp, nil
}

// delayFor computes the wait before the given retry attempt, honoring the
// server's Retry-After header when present.
func (t *Transport) delayFor(attempt int, resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			d := time.Duration(secs) * time.Second
			if d > t.cfg.MaxDelay {
				return t.cfg.MaxDelay
			}
			return d
		}
	}

	d := time.Duration(float64(t.cfg.BaseDelay) * math.Pow(2, float64(attempt-1)))
	if d > t.cfg.MaxDelay {
		d = t.cfg.MaxDelay
	}
	if t.cfg.Jitter {
		jitter := 0.8 + rand.Float64()*0.4
		d = time.Duration(float64(d) * jitter)
	}
	return d
}
