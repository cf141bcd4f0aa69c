package dto

import (
	"time"

	"github.com/ipede/album-catalog/internal/domain"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(user *domain.User) *UserResponse {
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	return &UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Roles:     roles,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// PrincipalResponse describes the caller as seen by the authentication gate
type PrincipalResponse struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

func NewPrincipalResponse(p *domain.Principal) *PrincipalResponse {
	authorities := p.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	return &PrincipalResponse{Username: p.Username, Authorities: authorities}
}
