// Package ratelimiter paces outgoing object store requests with a token bucket.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces requests using the token bucket algorithm from
// golang.org/x/time/rate.
//
// Tokens are added at a constant rate (requests per second) up to the burst
// size. Each request consumes one token; when the bucket is empty Wait blocks
// until a token is available or the context is cancelled.
//
// A nil *RateLimiter and a limiter built with a zero rate are both unlimited.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter with the given sustained rate and burst size.
//
// Special cases:
//   - requestsPerSecond = 0: no rate limiting
//   - burst = 0: defaults to requestsPerSecond
//
// Example:
//
//	// 100 req/s sustained, bursts of 200
//	limiter := ratelimiter.New(100, 200)
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}

	if burst == 0 {
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Unlimited reports whether the limiter lets every request through.
func (r *RateLimiter) Unlimited() bool {
	return r == nil || r.limiter.Limit() == rate.Inf
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
//
// Returns the context error when ctx is cancelled first, or an error when the
// wait would outlast the context deadline.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return ctx.Err()
	}
	return r.limiter.Wait(ctx)
}

// Limit returns the sustained rate in requests per second.
// Unlimited limiters return 0.
func (r *RateLimiter) Limit() float64 {
	if r.Unlimited() {
		return 0
	}
	return float64(r.limiter.Limit())
}

// Burst returns the bucket capacity.
func (r *RateLimiter) Burst() int {
	if r == nil {
		return 0
	}
	return r.limiter.Burst()
}

// Tokens returns the number of tokens currently available. The value may
// change immediately after the call.
func (r *RateLimiter) Tokens() float64 {
	if r == nil {
		return 0
	}
	return r.limiter.Tokens()
}
