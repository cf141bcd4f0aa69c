package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ipede/album-catalog/internal/domain"
	httperrors "github.com/ipede/album-catalog/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	tokens domain.TokenService
	loader domain.PrincipalLoader
	logger *zap.Logger
}

func NewAuthMiddleware(tokens domain.TokenService, loader domain.PrincipalLoader, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, loader: loader, logger: logger}
}

// Authenticator resolves the bearer token into a principal and attaches it to
// the request context. It never rejects: requests it cannot authenticate
// continue as anonymous and route policy decides what they may reach.
func (m *AuthMiddleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := domain.PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		token := jwtauth.TokenFromHeader(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		if principal := m.authenticate(r, token); principal != nil {
			r = r.WithContext(domain.WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request, token string) *domain.Principal {
	if m.tokens.IsRefresh(token) {
		m.logger.Debug("Refresh token presented as bearer credential", zap.String("path", r.URL.Path))
		return nil
	}

	username, err := m.tokens.ParseUsername(token)
	if err != nil {
		m.logger.Warn("Rejected bearer token", zap.Error(err), zap.String("path", r.URL.Path))
		return nil
	}
	if username == "" {
		return nil
	}

	roles := m.tokens.TryParseRoles(token)

	valid, err := m.tokens.ValidateAccess(token, username)
	if err != nil {
		m.logger.Warn("Rejected bearer token", zap.Error(err), zap.String("username", username))
		return nil
	}
	if !valid {
		m.logger.Debug("Expired or mismatched access token", zap.String("username", username))
		return nil
	}

	if len(roles) > 0 {
		return domain.NewPrincipal(username, roles)
	}

	principal, err := m.loader.LoadPrincipal(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			m.logger.Warn("Token subject has no principal", zap.String("username", username))
		} else {
			m.logger.Error("Failed to load principal", zap.Error(err), zap.String("username", username))
		}
		return nil
	}
	return principal
}

// RequireAuthenticated rejects anonymous requests with 401
func (m *AuthMiddleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := domain.PrincipalFromContext(r.Context()); !ok {
			httperrors.RespondWithError(w, httperrors.ErrCodeAuthentication, "Unauthorized", nil, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and principals lacking role with 403
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := domain.PrincipalFromContext(r.Context())
			if !ok {
				httperrors.RespondWithError(w, httperrors.ErrCodeAuthentication, "Unauthorized", nil, http.StatusUnauthorized)
				return
			}
			if !principal.HasAuthority(role) {
				httperrors.RespondWithError(w, httperrors.ErrCodeAuthorization, "Forbidden", nil, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
