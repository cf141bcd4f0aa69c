package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/ipede/album-catalog/internal/infrastructure/ratelimit"
	httperrors "github.com/ipede/album-catalog/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// AdmissionMiddleware spends one token of the authenticated principal's bucket
// per request. Anonymous requests pass through untouched.
type AdmissionMiddleware struct {
	limiter  *ratelimit.Limiter
	recorder domain.AdmissionRecorder
	logger   *zap.Logger
}

func NewAdmissionMiddleware(limiter *ratelimit.Limiter, recorder domain.AdmissionRecorder, logger *zap.Logger) *AdmissionMiddleware {
	return &AdmissionMiddleware{limiter: limiter, recorder: recorder, logger: logger}
}

func (m *AdmissionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := domain.PrincipalFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		decision := m.limiter.Admit(principal.Username)
		m.record(r, principal.Username, decision.Admitted)

		if decision.Admitted {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.Capacity()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			next.ServeHTTP(w, r)
			return
		}

		err := fmt.Errorf("%w: %s", domain.ErrRateLimited, principal.Username)
		m.logger.Debug("Rate limit exceeded",
			zap.Error(err),
			zap.String("username", principal.Username),
			zap.Duration("retry_after", decision.RetryAfter))

		if secs := decision.RetryAfterSeconds(); secs > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
		httperrors.RespondWithMessage(w, rejectionMessage(m.limiter.Capacity()), http.StatusTooManyRequests)
	})
}

// rejectionMessage is the 429 body clients parse; keep the wording stable.
func rejectionMessage(capacity int) string {
	return fmt.Sprintf("Rate limit exceeded. Maximum %d requests per minute.", capacity)
}

func (m *AdmissionMiddleware) record(r *http.Request, username string, admitted bool) {
	if m.recorder == nil {
		return
	}
	ev := domain.AdmissionEvent{
		Username: username,
		Admitted: admitted,
		Method:   r.Method,
		Path:     r.URL.Path,
		At:       time.Now(),
	}
	if err := m.recorder.Record(r.Context(), ev); err != nil {
		m.logger.Warn("Failed to record admission", zap.Error(err), zap.String("username", username))
	}
}
