package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ipede/album-catalog/internal/domain"
)

// HMACCodec signs and verifies HS256 tokens with a process-wide secret.
// The secret is copied on construction and never exposed again.
type HMACCodec struct {
	key    []byte
	parser *jwt.Parser
}

// NewHMACCodec creates a codec from the signing secret
func NewHMACCodec(secret []byte) (*HMACCodec, error) {
	if len(secret) < domain.MinSigningKeyLength {
		return nil, domain.ErrInvalidKeyConfig
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &HMACCodec{
		key: key,
		// Expiry is a claim the TokenService inspects, so the codec only
		// checks structure, algorithm and signature.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Sign serializes the claims and appends an HS256 signature
func (c *HMACCodec) Sign(claims *domain.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAndDecode verifies the signature and returns the claims.
// It fails with domain.ErrTokenMalformed or domain.ErrInvalidSignature.
func (c *HMACCodec) VerifyAndDecode(tokenString string) (*domain.Claims, error) {
	claims := &domain.Claims{}
	token, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}
	if !token.Valid {
		return nil, domain.ErrInvalidSignature
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
