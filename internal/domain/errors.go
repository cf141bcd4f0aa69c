package domain

import "errors"

var (
	// ErrTokenMalformed is returned when a token cannot be split into a signed payload
	ErrTokenMalformed = errors.New("malformed token")

	// ErrInvalidSignature is returned when the token MAC does not verify or the algorithm is not accepted
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired is returned when a correctly signed token is past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrWrongPrincipal is returned when the token subject does not match the expected principal
	ErrWrongPrincipal = errors.New("token subject does not match principal")

	// ErrNotRefreshToken is returned when an access token is presented where a refresh token is required
	ErrNotRefreshToken = errors.New("not a refresh token")

	// ErrRateLimited is returned when admission is denied for a principal
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrPrincipalNotFound is returned by a PrincipalLoader for unknown subjects
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrTokenGeneration is returned when a token could not be signed
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidCredentials is returned when credentials are invalid
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists is returned when a user with the same username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrDatabaseQuery is returned when a query fails for reasons other than a missing row
	ErrDatabaseQuery = errors.New("database query failed")

	// ErrInvalidKeyConfig is returned when the signing secret is missing or too short
	ErrInvalidKeyConfig = errors.New("invalid signing key configuration")

	// ErrInternal is returned when there is an internal server error
	ErrInternal = errors.New("internal server error")
)
