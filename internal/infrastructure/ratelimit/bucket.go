package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Bucket is a per-principal token bucket. Tokens are fractional so refill is
// proportional to the time elapsed since the last check.
type Bucket struct {
	mu         sync.Mutex
	capacity   float64
	period     time.Duration
	available  float64
	lastRefill time.Time
}

func newBucket(capacity int, period time.Duration, now time.Time) *Bucket {
	return &Bucket{
		capacity:   float64(capacity),
		period:     period,
		available:  float64(capacity),
		lastRefill: now,
	}
}

// Capacity returns the maximum number of tokens the bucket holds
func (b *Bucket) Capacity() int {
	return int(b.capacity)
}

// Available returns the whole tokens currently held, without refilling
func (b *Bucket) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(math.Floor(b.available))
}

// take refills the bucket up to now and consumes one token if possible.
// On rejection it returns the wait until one full token is available.
func (b *Bucket) take(now time.Time) (bool, int, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.available, b.lastRefill = refill(now, b.lastRefill, b.available, b.capacity, b.period)

	if b.available >= 1 {
		b.available--
		return true, int(math.Floor(b.available)), 0
	}

	perToken := float64(b.period) / b.capacity
	wait := time.Duration(math.Ceil((1 - b.available) * perToken))
	if wait <= 0 {
		wait = time.Nanosecond
	}
	return false, 0, wait
}

// refill credits capacity tokens per period for the time elapsed since
// lastRefill, clamped to capacity. A clock that moves backwards credits nothing.
func refill(now, lastRefill time.Time, available, capacity float64, period time.Duration) (float64, time.Time) {
	elapsed := now.Sub(lastRefill)
	if elapsed <= 0 || period <= 0 {
		return available, lastRefill
	}

	available += capacity * float64(elapsed) / float64(period)
	if available > capacity {
		available = capacity
	}
	return available, now
}
