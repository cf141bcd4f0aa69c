package domain

import "context"

// ContextKey is a type for context keys to avoid magic strings
type ContextKey string

const (
	// ContextKeyPrincipal is the key for the authenticated principal in the context
	ContextKeyPrincipal ContextKey = "principal"
)

// WithPrincipal attaches the authenticated principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// PrincipalFromContext retrieves the authenticated principal from the context.
// The second return value is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// GetSubject retrieves the username of the authenticated principal from the context
func GetSubject(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return "", false
	}
	return p.Username, true
}

// GetRoles retrieves the authorities of the authenticated principal from the context
func GetRoles(ctx context.Context) ([]string, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil, false
	}
	return p.Authorities, true
}
