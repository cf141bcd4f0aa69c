package ratelimit

import (
	"time"

	"github.com/ipede/album-catalog/internal/domain"
	"go.uber.org/zap"
)

const refillPeriod = time.Minute

// Limiter hands out per-principal token buckets holding requestsPerMinute
// tokens each and refilling at the same rate per minute.
type Limiter struct {
	capacity int
	store    BucketStore
	now      func() time.Time
	logger   *zap.Logger
}

type LimiterOption func(*Limiter)

// WithLimiterClock overrides the wall clock used for refills
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) { l.now = now }
}

// WithBucketStore replaces the in-memory bucket store
func WithBucketStore(store BucketStore) LimiterOption {
	return func(l *Limiter) { l.store = store }
}

// NewLimiter creates a limiter. A non-positive rate falls back to
// domain.DefaultRequestsPerMinute.
func NewLimiter(requestsPerMinute int, logger *zap.Logger, opts ...LimiterOption) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = domain.DefaultRequestsPerMinute
	}

	l := &Limiter{
		capacity: requestsPerMinute,
		store:    NewMemoryBucketStore(),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Capacity returns the configured requests per minute
func (l *Limiter) Capacity() int {
	return l.capacity
}

// CreateBucket returns a full bucket
func (l *Limiter) CreateBucket() *Bucket {
	return newBucket(l.capacity, refillPeriod, l.now())
}

// TryConsume takes one token from the bucket if one is available
func (l *Limiter) TryConsume(b *Bucket) domain.Decision {
	admitted, remaining, wait := b.take(l.now())
	return domain.Decision{
		Admitted:   admitted,
		Remaining:  remaining,
		RetryAfter: wait,
	}
}

// GetOrCreate returns the bucket for username in store, creating a full one
// on first use. Concurrent first calls for the same username share one bucket.
func (l *Limiter) GetOrCreate(store BucketStore, username string) *Bucket {
	if b, ok := store.Get(username); ok {
		return b
	}
	return store.InsertIfAbsent(username, func() *Bucket {
		l.logger.Debug("Created rate limit bucket",
			zap.String("username", username),
			zap.Int("capacity", l.capacity))
		return l.CreateBucket()
	})
}

// Admit consumes one token from username's bucket in the limiter's own store
func (l *Limiter) Admit(username string) domain.Decision {
	return l.TryConsume(l.GetOrCreate(l.store, username))
}
