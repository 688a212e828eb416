// Package ratelimit throttles heartbeats per device.
//
// Each device gets its own token bucket. A bucket holds up to Burst tokens
// and refills at the configured per-minute rate; every heartbeat takes one
// token. When the bucket is empty the heartbeat is refused and the caller
// learns how long to wait:
//
//	limiter := ratelimit.New(60, 10) // 60/min average, bursts of 10
//	res := limiter.Allow("sensor-3")
//	if !res.Allowed {
//	    w.Header().Set("Retry-After", res.RetryAfterSeconds())
//	}
//
// Buckets that have refilled completely carry no state worth keeping, so
// Sweep (or Run on an interval) drops them. A device that stops reporting
// costs nothing after one sweep.
package ratelimit
