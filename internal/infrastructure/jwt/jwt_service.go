package jwt

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ipede/album-catalog/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type tokenService struct {
	codec           domain.TokenCodec
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time
	logger          *zap.Logger
}

// Option configures the token service
type Option func(*tokenService)

// WithClock overrides the wall clock used for issuing and expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *tokenService) { s.now = now }
}

// NewTokenService creates a token service issuing tokens through codec
func NewTokenService(codec domain.TokenCodec, accessDuration, refreshDuration time.Duration, logger *zap.Logger, opts ...Option) domain.TokenService {
	if accessDuration <= 0 {
		accessDuration = domain.DefaultAccessTokenDuration
	}
	if refreshDuration <= 0 {
		refreshDuration = domain.DefaultRefreshTokenDuration
	}

	s := &tokenService{
		codec:           codec,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		now:             time.Now,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueAccessToken issues a short-lived token carrying the principal's roles.
// An empty role set is left out of the payload entirely.
func (s *tokenService) IssueAccessToken(username string, roles []string) (string, error) {
	now := s.now()
	claims := &domain.Claims{
		RegisteredClaims: s.registered(username, now, s.accessDuration),
	}
	if len(roles) > 0 {
		claims.Roles = slices.Clone(roles)
	}
	return s.sign(claims, domain.TokenKindAccess)
}

// IssueRefreshToken issues a long-lived token that never carries roles
func (s *tokenService) IssueRefreshToken(username string) (string, error) {
	now := s.now()
	claims := &domain.Claims{
		RegisteredClaims: s.registered(username, now, s.refreshDuration),
		Type:             domain.TokenKindRefresh,
	}
	return s.sign(claims, domain.TokenKindRefresh)
}

// IssueTokenPair issues an access token and a refresh token for the same subject
func (s *tokenService) IssueTokenPair(username string, roles []string) (*domain.TokenPair, error) {
	accessToken, err := s.IssueAccessToken(username, roles)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.IssueRefreshToken(username)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Generated token pair", zap.String("username", username))

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ParseUsername returns the token subject, failing on any decode error
func (s *tokenService) ParseUsername(token string) (string, error) {
	claims, err := s.codec.VerifyAndDecode(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ParseExpiry returns the token expiry, failing on any decode error
func (s *tokenService) ParseExpiry(token string) (time.Time, error) {
	claims, err := s.codec.VerifyAndDecode(token)
	if err != nil {
		return time.Time{}, err
	}
	return expiryOf(claims), nil
}

// IsExpired reports whether the token expiry lies in the past
func (s *tokenService) IsExpired(token string) (bool, error) {
	expiresAt, err := s.ParseExpiry(token)
	if err != nil {
		return false, err
	}
	return expiresAt.Before(s.now()), nil
}

// ValidateAccess checks kind, subject and expiry. A refresh token, a wrong
// subject or an expired token yields false; structural and signature failures
// are returned.
func (s *tokenService) ValidateAccess(token, username string) (bool, error) {
	claims, err := s.codec.VerifyAndDecode(token)
	if err != nil {
		return false, err
	}
	if claims.Kind() != domain.TokenKindAccess {
		return false, nil
	}
	return s.matches(claims, username), nil
}

// ValidateRefresh is ValidateAccess restricted to refresh tokens
func (s *tokenService) ValidateRefresh(token, username string) (bool, error) {
	claims, err := s.codec.VerifyAndDecode(token)
	if err != nil {
		return false, err
	}
	if claims.Kind() != domain.TokenKindRefresh {
		return false, nil
	}
	return s.matches(claims, username), nil
}

// TryParseRoles returns the embedded roles, or an empty slice when the token
// carries none or cannot be decoded.
func (s *tokenService) TryParseRoles(token string) []string {
	claims, err := s.codec.VerifyAndDecode(token)
	if err != nil {
		s.logger.Debug("Ignoring undecodable token while reading roles", zap.Error(err))
		return []string{}
	}
	if len(claims.Roles) == 0 {
		return []string{}
	}
	return slices.Clone(claims.Roles)
}

// IsRefresh reports whether the token is a refresh token; false on decode failure
func (s *tokenService) IsRefresh(token string) bool {
	claims, err := s.codec.VerifyAndDecode(token)
	if err != nil {
		return false
	}
	return claims.Kind() == domain.TokenKindRefresh
}

func (s *tokenService) AccessDuration() time.Duration {
	return s.accessDuration
}

func (s *tokenService) RefreshDuration() time.Duration {
	return s.refreshDuration
}

func (s *tokenService) registered(username string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        ulid.Make().String(),
	}
}

func (s *tokenService) sign(claims *domain.Claims, kind domain.TokenKind) (string, error) {
	token, err := s.codec.Sign(claims)
	if err != nil {
		s.logger.Error("Failed to sign token",
			zap.Error(err),
			zap.String("token_id", claims.ID),
			zap.String("kind", string(kind)),
			zap.String("username", claims.Subject))
		return "", domain.ErrTokenGeneration
	}
	return token, nil
}

func (s *tokenService) matches(claims *domain.Claims, username string) bool {
	if claims.Subject != username {
		return false
	}
	return !expiryOf(claims).Before(s.now())
}

// A token without an exp claim is treated as already expired.
func expiryOf(claims *domain.Claims) time.Time {
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
