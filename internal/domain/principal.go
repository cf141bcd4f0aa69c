package domain

import (
	"context"
	"slices"
)

// Principal is the authenticated identity attached to a request for its duration
type Principal struct {
	Username    string
	Authorities []string
}

// NewPrincipal creates a principal, copying the authorities
func NewPrincipal(username string, authorities []string) *Principal {
	return &Principal{
		Username:    username,
		Authorities: slices.Clone(authorities),
	}
}

// HasAuthority checks if the principal was granted the given authority
func (p *Principal) HasAuthority(authority string) bool {
	return slices.Contains(p.Authorities, authority)
}

// PrincipalLoader resolves the authorities of a subject from the user store.
// It returns ErrPrincipalNotFound for unknown or inactive subjects.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, username string) (*Principal, error)
}

// CredentialVerifier checks a username/password pair
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (bool, error)
}
