package password

import (
	"errors"
	"fmt"

	"github.com/ipede/album-catalog/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

// HashPassword produces the bcrypt hash stored in the users table.
// Passwords over MaxLength bytes are rejected as domain.ErrInvalidCredentials
// so the admin CLI and login path treat them as bad input.
func HashPassword(password string) (string, error) {
	if len(password) > MaxLength {
		return "", fmt.Errorf("%w: password longer than %d bytes", domain.ErrInvalidCredentials, MaxLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a login attempt with a stored hash.
// A mismatch is domain.ErrInvalidCredentials; a corrupt hash is returned as is.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrInvalidCredentials
	}
	return err
}
