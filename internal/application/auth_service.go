package application

import (
	"context"
	"errors"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/ipede/album-catalog/internal/infrastructure/password"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo   domain.UserRepository
	principals domain.PrincipalLoader
	tokens     domain.TokenService
	logger     *zap.Logger
}

func NewAuthService(userRepo domain.UserRepository, principals domain.PrincipalLoader, tokens domain.TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		principals: principals,
		tokens:     tokens,
		logger:     logger,
	}
}

// VerifyCredentials reports whether password matches the stored hash of an
// active user. Unknown users and wrong passwords are both false without error.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, passwordStr string) (bool, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if !user.Active {
		return false, nil
	}

	if err := password.CheckPassword(passwordStr, user.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return false, nil
		}
		s.logger.Error("Failed to compare password hash", zap.Error(err), zap.String("username", username))
		return false, domain.ErrInternal
	}
	return true, nil
}

// Login verifies credentials and issues an access token carrying the user's
// roles together with a refresh token.
func (s *AuthService) Login(ctx context.Context, username, passwordStr string) (*domain.LoginResponse, error) {
	ok, err := s.VerifyCredentials(ctx, username, passwordStr)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Info("Login rejected", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}

	principal, err := s.principals.LoadPrincipal(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	return s.issue(principal)
}

// Refresh exchanges a valid refresh token for a new token pair. Roles are
// re-read from the user store so grants changed since login take effect.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.LoginResponse, error) {
	username, err := s.tokens.ParseUsername(refreshToken)
	if err != nil {
		return nil, err
	}
	if !s.tokens.IsRefresh(refreshToken) {
		return nil, domain.ErrNotRefreshToken
	}

	expired, err := s.tokens.IsExpired(refreshToken)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, domain.ErrTokenExpired
	}

	principal, err := s.principals.LoadPrincipal(ctx, username)
	if err != nil {
		return nil, err
	}

	valid, err := s.tokens.ValidateRefresh(refreshToken, principal.Username)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, domain.ErrWrongPrincipal
	}

	return s.issue(principal)
}

func (s *AuthService) issue(principal *domain.Principal) (*domain.LoginResponse, error) {
	pair, err := s.tokens.IssueTokenPair(principal.Username, principal.Authorities)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Issued tokens", zap.String("username", principal.Username))

	return &domain.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Type:         domain.TokenTypeBearer,
		ExpiresIn:    s.tokens.AccessDuration().Milliseconds(),
	}, nil
}
