// Package backoff provides an exponential-backoff timer, partially adapted
// from jpillora/backoff. It backs the rate-limit governor's 5xx/connection
// retry policy (base 1s, cap 30s) and the shard's resume reconnect delay.
package backoff

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"
)

const factor = 2

// Backoff computes successive durations starting at Min, doubling (with
// jitter) on every call to Next, never exceeding Max.
type Backoff struct {
	min, max float64 // seconds
	attempt  int32
}

// New creates a Backoff bounded by [min, max].
func New(min, max time.Duration) *Backoff {
	return &Backoff{min: min.Seconds(), max: max.Seconds()}
}

// Next returns the duration for the next attempt and advances the counter.
func (b *Backoff) Next() time.Duration {
	return b.forAttempt(atomic.AddInt32(&b.attempt, 1) - 1)
}

// Reset zeroes the attempt counter, e.g. after a request finally succeeds.
func (b *Backoff) Reset() {
	atomic.StoreInt32(&b.attempt, 0)
}

// Attempt returns the number of times Next has been called since the last
// Reset.
func (b *Backoff) Attempt() int {
	return int(atomic.LoadInt32(&b.attempt))
}

func (b *Backoff) forAttempt(attempt int32) time.Duration {
	if b.min >= b.max {
		return duration(b.max)
	}
	if attempt < 0 {
		attempt = math.MaxInt32
	}

	dur := b.min * math.Pow(factor, float64(attempt))
	dur = rand.Float64()*(dur-b.min) + b.min

	if dur < b.min {
		return duration(b.min)
	}
	if dur > b.max {
		return duration(b.max)
	}
	return duration(dur)
}

func duration(secs float64) time.Duration {
	whole, frac := math.Modf(secs)
	return time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second))
}
