package domain

import "context"

// UserService defines the interface for user operations
type UserService interface {
	// GetByUsername retrieves an active user by username
	GetByUsername(ctx context.Context, username string) (*User, error)
	// ListUsers retrieves a list of users with pagination
	ListUsers(ctx context.Context, limit, offset int) ([]*User, error)
	// CreateUser hashes the password and stores a new user
	CreateUser(ctx context.Context, username, password string, roles []string) (*User, error)
}
