package ratelimit

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"
)

// Recorder receives refused heartbeats. *metrics.Collector satisfies it.
type Recorder interface {
	RecordRateLimited()
}

// Result is the outcome of one Allow call.
type Result struct {
	Allowed bool

	// Remaining is the number of heartbeats the device may still send
	// without waiting.
	Remaining int

	// RetryAfter is zero when Allowed.
	RetryAfter time.Duration
}

// RetryAfterSeconds formats RetryAfter for a Retry-After header, rounding up
// to whole seconds with a minimum of 1.
func (r Result) RetryAfterSeconds() string {
	secs := int64(math.Ceil(r.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*TokenBucket
	burst    int
	rate     float64 // tokens per second
	now      func() time.Time
	recorder Recorder
}

// New returns a limiter allowing perMinute heartbeats per key on average with
// bursts of up to burst. A burst below 1 is raised to 1.
func New(perMinute, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		buckets: make(map[string]*TokenBucket),
		burst:   burst,
		rate:    float64(perMinute) / 60,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// WithRecorder reports refusals to r.
func (l *Limiter) WithRecorder(r Recorder) *Limiter {
	l.recorder = r
	return l
}

// Allow takes one token from key's bucket.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = NewTokenBucket(l.burst, l.rate, now)
		l.buckets[key] = b
	}
	res := Result{Allowed: b.Take(now)}
	res.Remaining = b.Remaining(now)
	if !res.Allowed {
		res.RetryAfter = b.TimeUntilAvailable(now)
	}
	l.mu.Unlock()

	if !res.Allowed && l.recorder != nil {
		l.recorder.RecordRateLimited()
	}
	return res
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Sweep drops buckets that have refilled to capacity and returns how many
// were dropped.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	dropped := 0
	for key, b := range l.buckets {
		if b.Full(now) {
			delete(l.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
