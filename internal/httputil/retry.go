// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for calls to external services.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// RetryBaseDelay is the first backoff delay. Tests override it to avoid
// real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps a server-supplied Retry-After delay.
var MaxRetryAfter = time.Minute

const defaultMaxRetries = 3

// Retryable reports whether a status is worth retrying: 429 Too Many
// Requests and 503 Service Unavailable.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// Retrier sends requests and retries retryable responses with exponential
// backoff: RetryBaseDelay, then double each attempt. A Retry-After header
// in seconds replaces the computed delay, capped at MaxRetryAfter.
type Retrier struct {
	Client *http.Client

	// MaxRetries is the number of retries after the first attempt. Zero
	// means the default of 3.
	MaxRetries int

	Logger zerolog.Logger
}

// NewRetrier returns a Retrier with a silent logger.
func NewRetrier(client *http.Client, maxRetries int) *Retrier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Retrier{Client: client, MaxRetries: maxRetries, Logger: zerolog.Nop()}
}

// Do executes req. Request bodies are replayed through req.GetBody, which
// http.NewRequest sets for in-memory bodies. The body of each retried
// response is drained and closed before sleeping. After the last retry the
// final retryable response is returned so the caller can inspect it. A
// cancelled context during a wait returns ctx.Err().
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := r.Client.Do(attemptReq)
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := retryAfter(resp.Header.Get("Retry-After"))
		if wait == 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		r.Logger.Warn().
			Int("status", resp.StatusCode).
			Dur("backoff", wait).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Str("host", req.URL.Host).
			Msg("request throttled, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// DoWithRetry is a shorthand for a silent Retrier.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	return NewRetrier(client, maxRetries).Do(ctx, req)
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d
}
