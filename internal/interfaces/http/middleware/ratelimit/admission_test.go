package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/ipede/album-catalog/internal/infrastructure/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubClock struct{ now time.Time }

func (c *stubClock) Now() time.Time { return c.now }

func newAdmission(rpm int, c *stubClock, recorder domain.AdmissionRecorder) (*AdmissionMiddleware, *atomic.Int32) {
	limiter := ratelimit.NewLimiter(rpm, zap.NewNop(), ratelimit.WithLimiterClock(c.Now))
	m := NewAdmissionMiddleware(limiter, recorder, zap.NewNop())

	var served atomic.Int32
	return m, &served
}

func handlerCounting(served *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served.Add(1)
		w.WriteHeader(http.StatusOK)
	})
}

func asUser(username string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/usuarios/me", nil)
	return req.WithContext(domain.WithPrincipal(req.Context(), domain.NewPrincipal(username, []string{domain.RoleUser})))
}

func TestAdmissionMiddleware_RejectsAfterCapacity(t *testing.T) {
	c := &stubClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	stats := ratelimit.NewMemoryStatsRecorder()
	m, served := newAdmission(10, c, stats)
	handler := m.Handler(handlerCounting(served))

	for i := 0; i < 10; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, asUser("alice"))
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
		assert.Equal(t, "10", rr.Header().Get("X-RateLimit-Limit"))
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, asUser("alice"))

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "6", rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"Rate limit exceeded. Maximum 10 requests per minute."}`, rr.Body.String())
	assert.Equal(t, int32(10), served.Load())
	assert.Equal(t, ratelimit.Counters{Admitted: 10, Rejected: 1}, stats.Total())

	c.now = c.now.Add(time.Minute)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, asUser("alice"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAdmissionMiddleware_RetryAfterRoundsUp(t *testing.T) {
	c := &stubClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m, served := newAdmission(7, c, nil)
	handler := m.Handler(handlerCounting(served))

	for i := 0; i < 7; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), asUser("alice"))
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, asUser("alice"))

	// 60s / 7 tokens is 8.57s per token
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "9", rr.Header().Get("Retry-After"))
}

func TestAdmissionMiddleware_AnonymousAlwaysAdmitted(t *testing.T) {
	c := &stubClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	stats := ratelimit.NewMemoryStatsRecorder()
	m, served := newAdmission(1, c, stats)
	handler := m.Handler(handlerCounting(served))

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/usuarios/me", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, int32(5), served.Load())
	assert.Equal(t, ratelimit.Counters{}, stats.Total())
}

func TestAdmissionMiddleware_PrincipalsAreIndependent(t *testing.T) {
	c := &stubClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m, served := newAdmission(1, c, nil)
	handler := m.Handler(handlerCounting(served))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, asUser("alice"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, asUser("alice"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, asUser("bob"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

type brokenRecorder struct{}

func (brokenRecorder) Record(context.Context, domain.AdmissionEvent) error {
	return errors.New("redis: connection refused")
}

func TestAdmissionMiddleware_RecorderFailureDoesNotReject(t *testing.T) {
	c := &stubClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m, served := newAdmission(10, c, brokenRecorder{})
	handler := m.Handler(handlerCounting(served))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, asUser("alice"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int32(1), served.Load())
}

func TestAdmissionMiddleware_RejectionLogsRateLimitedError(t *testing.T) {
	c := &stubClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	core, logs := observer.New(zap.DebugLevel)
	limiter := ratelimit.NewLimiter(1, zap.NewNop(), ratelimit.WithLimiterClock(c.Now))
	handler := NewAdmissionMiddleware(limiter, nil, zap.New(core)).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, asUser("alice"))
		require.Equal(t, want, rr.Code)
	}

	entries := logs.FilterMessage("Rate limit exceeded").All()
	require.Len(t, entries, 1)

	var logged error
	for _, f := range entries[0].Context {
		if f.Key == "error" {
			logged, _ = f.Interface.(error)
		}
	}
	assert.ErrorIs(t, logged, domain.ErrRateLimited)
	assert.Equal(t, "alice", entries[0].ContextMap()["username"])
}
