package application

import (
	"context"
	"errors"
	"strings"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/ipede/album-catalog/internal/infrastructure/password"
	"go.uber.org/zap"
)

const maxListLimit = 100

type UserService struct {
	userRepo domain.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo domain.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// LoadPrincipal resolves the authorities of an active user.
// Unknown and inactive users yield domain.ErrPrincipalNotFound.
func (s *UserService) LoadPrincipal(ctx context.Context, username string) (*domain.Principal, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrPrincipalNotFound
	}
	return domain.NewPrincipal(user.Username, user.Roles), nil
}

// GetByUsername retrieves an active user by username
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// ListUsers retrieves a list of users with pagination
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}

// CreateUser hashes the password and stores a new active user
func (s *UserService) CreateUser(ctx context.Context, username, passwordStr string, roles []string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || passwordStr == "" {
		return nil, domain.ErrInvalidCredentials
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := password.HashPassword(passwordStr)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, domain.ErrInternal
	}

	user := domain.NewUser(username, hashedPassword, roles)
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.Error(err), zap.String("username", username))
		return nil, err
	}

	s.logger.Info("Created user", zap.String("username", username), zap.Strings("roles", user.Roles))
	return user, nil
}
