package domain

import "context"

// AuthService defines the login and token refresh operations
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error)
}
