package errors

import (
	"errors"
	"net/http"

	"github.com/ipede/album-catalog/internal/domain"
)

// statusFor maps a domain error onto an HTTP status and error code.
// Token failures are always client errors.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrWrongPrincipal),
		errors.Is(err, domain.ErrNotRefreshToken),
		errors.Is(err, domain.ErrPrincipalNotFound):
		return http.StatusUnauthorized, ErrCodeAuthentication
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, ErrCodeRateLimited
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

// RespondWithDomainError sends the standardized error body for a domain error.
// Unknown errors are reported as internal without leaking their text.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = domain.ErrInternal.Error()
	}
	RespondWithError(w, code, message, nil, status)
}
