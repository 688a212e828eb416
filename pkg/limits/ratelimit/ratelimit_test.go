package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(perMinute, burst int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return New(perMinute, burst).WithClock(clock.now), clock
}

type countingRecorder struct{ n int }

func (r *countingRecorder) RecordRateLimited() { r.n++ }

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	start := time.Unix(0, 0)
	b := NewTokenBucket(2, 1, start)

	assert.True(t, b.Take(start))
	assert.True(t, b.Take(start))
	assert.False(t, b.Take(start))
	assert.Equal(t, time.Second, b.TimeUntilAvailable(start))

	half := start.Add(500 * time.Millisecond)
	assert.False(t, b.Take(half))
	assert.Equal(t, 500*time.Millisecond, b.TimeUntilAvailable(half))

	assert.True(t, b.Take(start.Add(time.Second)))
	assert.Equal(t, 0, b.Remaining(start.Add(time.Second)))
}

func TestTokenBucket_CapacityLimit(t *testing.T) {
	start := time.Unix(0, 0)
	b := NewTokenBucket(3, 10, start)

	later := start.Add(time.Hour)
	assert.Equal(t, 3, b.Remaining(later))
	assert.True(t, b.Full(later))
	assert.Equal(t, time.Duration(0), b.TimeUntilAvailable(later))
}

func TestTokenBucket_ClockGoingBackwards(t *testing.T) {
	start := time.Unix(100, 0)
	b := NewTokenBucket(1, 1, start)
	require.True(t, b.Take(start))

	assert.False(t, b.Take(start.Add(-time.Minute)))
	assert.True(t, b.Take(start.Add(time.Second)))
}

func TestLimiter_AllowPerKey(t *testing.T) {
	l, _ := newTestLimiter(60, 2)

	r := l.Allow("a")
	assert.True(t, r.Allowed)
	assert.Equal(t, 1, r.Remaining)
	assert.Zero(t, r.RetryAfter)

	assert.True(t, l.Allow("a").Allowed)

	r = l.Allow("a")
	assert.False(t, r.Allowed)
	assert.Equal(t, 0, r.Remaining)
	assert.Equal(t, time.Second, r.RetryAfter)

	assert.True(t, l.Allow("b").Allowed, "keys have separate buckets")
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(6, 1)

	require.True(t, l.Allow("a").Allowed)
	r := l.Allow("a")
	require.False(t, r.Allowed)
	assert.Equal(t, 10*time.Second, r.RetryAfter)

	clock.advance(9 * time.Second)
	assert.False(t, l.Allow("a").Allowed)

	clock.advance(time.Second)
	assert.True(t, l.Allow("a").Allowed)
}

func TestLimiter_BurstFloor(t *testing.T) {
	l, _ := newTestLimiter(60, 0)
	assert.True(t, l.Allow("a").Allowed)
	assert.False(t, l.Allow("a").Allowed)
}

func TestLimiter_Recorder(t *testing.T) {
	rec := &countingRecorder{}
	l, _ := newTestLimiter(60, 1)
	l.WithRecorder(rec)

	l.Allow("a")
	l.Allow("a")
	l.Allow("a")
	assert.Equal(t, 2, rec.n)
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(60, 2)

	l.Allow("a")
	l.Allow("b")
	l.Allow("b")
	require.Equal(t, 2, l.Len())

	clock.advance(time.Second)
	assert.Equal(t, 1, l.Sweep(), "a is full again, b still owes a token")
	assert.Equal(t, 1, l.Len())

	clock.advance(time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_RunStopsOnCancel(t *testing.T) {
	l := New(60, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Run(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLimiter_RunWithoutInterval(t *testing.T) {
	l := New(60, 1)
	l.Run(context.Background(), 0)
}

func TestResult_RetryAfterSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "1"},
		{300 * time.Millisecond, "1"},
		{time.Second, "1"},
		{1500 * time.Millisecond, "2"},
		{time.Minute, "60"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result{RetryAfter: tt.in}.RetryAfterSeconds())
	}
}
