package domain

import (
	"context"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULID represents a Universally Unique Lexicographically Sortable Identifier
// @Description A string representation of ULID
// @type string
// @format ulid
type ULID = ulid.ULID

// RoleAdmin is the authority required by administrative routes
const RoleAdmin = "ROLE_ADMIN"

// RoleUser is granted to every user on creation
const RoleUser = "ROLE_USER"

// User represents an account able to log in to the catalogue API
type User struct {
	ID        ulid.ULID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // Password is not serialized to JSON
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new active user with the given password hash
func NewUser(username, passwordHash string, roles []string) *User {
	now := time.Now()
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}
	return &User{
		ID:        ulid.Make(),
		Username:  username,
		Password:  passwordHash,
		Roles:     slices.Clone(roles),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasRole checks if the user has a specific role
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername checks if a user exists with the given username
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// List lists all users with pagination
	List(ctx context.Context, limit, offset int) ([]*User, error)
}
