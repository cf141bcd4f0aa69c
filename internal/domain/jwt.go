package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenDuration is the access token lifetime when none is configured
	DefaultAccessTokenDuration = 5 * time.Minute
	// DefaultRefreshTokenDuration is the refresh token lifetime when none is configured
	DefaultRefreshTokenDuration = 7 * 24 * time.Hour
	// MinSigningKeyLength is the minimum HMAC secret length in bytes (256 bits for HS256)
	MinSigningKeyLength = 32
	// TokenTypeBearer is the token type reported to clients
	TokenTypeBearer = "Bearer"
)

// TokenKind distinguishes access tokens from refresh tokens
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the signed payload of every token issued by the service.
// Roles is only present on access tokens that carry at least one role;
// Type is only present on refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string  `json:"roles,omitempty"`
	Type  TokenKind `json:"type,omitempty"`
}

// Kind reports the token kind encoded in the claims
func (c *Claims) Kind() TokenKind {
	if c.Type == TokenKindRefresh {
		return TokenKindRefresh
	}
	return TokenKindAccess
}

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is returned by the login and refresh endpoints
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Type         string `json:"type"`
	// ExpiresIn is the access token lifetime in milliseconds
	ExpiresIn int64 `json:"expiresIn"`
}

// LoginRequest represents the request to login a user
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest represents the request to refresh an access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}
