package ratelimit

import (
	"math"
	"time"
)

// TokenBucket implements the token bucket algorithm.
//
// The bucket allows bursts up to its capacity while holding the average rate
// at refillRate tokens per second. Tokens are fractional so slow rates such as
// one heartbeat a minute refill smoothly.
//
// TokenBucket is not safe for concurrent use; Limiter serializes access.
type TokenBucket struct {
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
}

// NewTokenBucket returns a full bucket.
//
//	// 1 token/sec average, burst up to 10
//	bucket := NewTokenBucket(10, 1, time.Now())
func NewTokenBucket(capacity int, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now,
	}
}

// Take consumes one token if available.
func (tb *TokenBucket) Take(now time.Time) bool {
	tb.refill(now)
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Remaining returns the whole tokens available at now.
func (tb *TokenBucket) Remaining(now time.Time) int {
	tb.refill(now)
	return int(math.Floor(tb.tokens))
}

// Full reports whether the bucket is back at capacity.
func (tb *TokenBucket) Full(now time.Time) bool {
	tb.refill(now)
	return tb.tokens >= tb.capacity
}

// TimeUntilAvailable returns how long until one token is available.
// Returns 0 if a token is available now.
func (tb *TokenBucket) TimeUntilAvailable(now time.Time) time.Duration {
	tb.refill(now)
	if tb.tokens >= 1 {
		return 0
	}
	if tb.refillRate <= 0 {
		return math.MaxInt64
	}
	seconds := (1 - tb.tokens) / tb.refillRate
	return time.Duration(math.Ceil(seconds * float64(time.Second)))
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}
	tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}
