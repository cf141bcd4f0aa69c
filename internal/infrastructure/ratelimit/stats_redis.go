package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStatsRecorder counts admission outcomes in Redis hashes:
//
//	<prefix>:total              admitted / rejected, never expires
//	<prefix>:minute:<yyyymmddhhmm>  per-minute series, expires after ttl
//	<prefix>:route              "<method> <path>:<outcome>"
//	<prefix>:user:<username>    only with WithStatsTrackUsers
//
// Bucket state stays in process; these counters are for dashboards only.
type RedisStatsRecorder struct {
	rdb        redis.Cmdable
	prefix     string
	ttl        time.Duration
	trackUsers bool
}

type RedisStatsOption func(*RedisStatsRecorder)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsRecorder) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsRecorder) { s.ttl = d }
}

func WithStatsTrackUsers(track bool) RedisStatsOption {
	return func(s *RedisStatsRecorder) { s.trackUsers = track }
}

func NewRedisStatsRecorder(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsRecorder {
	s := &RedisStatsRecorder{
		rdb:    rdb,
		prefix: "catalog:admission",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsRecorder) Record(ctx context.Context, ev domain.AdmissionEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := outcome(ev.Admitted)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.TotalKey(), field, 1)

	minuteKey := s.MinuteKey(at)
	pipe.HIncrBy(ctx, minuteKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, minuteKey, s.ttl)
	}

	if route := strings.TrimSpace(ev.Method + " " + ev.Path); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}

	if s.trackUsers && ev.Username != "" {
		userKey := s.prefix + ":user:" + ev.Username
		pipe.HIncrBy(ctx, userKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, userKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record admission stats: %w", err)
	}
	return nil
}

func (s *RedisStatsRecorder) TotalKey() string {
	return s.prefix + ":total"
}

func (s *RedisStatsRecorder) MinuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}

func outcome(admitted bool) string {
	if admitted {
		return "admitted"
	}
	return "rejected"
}
