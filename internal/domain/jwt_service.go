package domain

import "time"

// TokenCodec signs claims and verifies signed tokens.
// VerifyAndDecode never returns claims for a token whose signature does not verify.
type TokenCodec interface {
	Sign(claims *Claims) (string, error)
	VerifyAndDecode(token string) (*Claims, error)
}

// TokenService issues and inspects access and refresh tokens.
//
// Methods returning an error are the hard path: decode failures (ErrTokenMalformed,
// ErrInvalidSignature) propagate to the caller. TryParseRoles and IsRefresh are the
// soft path and swallow decode failures into empty/false results.
type TokenService interface {
	IssueAccessToken(username string, roles []string) (string, error)
	IssueRefreshToken(username string) (string, error)
	IssueTokenPair(username string, roles []string) (*TokenPair, error)

	ParseUsername(token string) (string, error)
	ParseExpiry(token string) (time.Time, error)
	IsExpired(token string) (bool, error)
	ValidateAccess(token, username string) (bool, error)
	ValidateRefresh(token, username string) (bool, error)

	TryParseRoles(token string) []string
	IsRefresh(token string) bool

	AccessDuration() time.Duration
	RefreshDuration() time.Duration
}
