package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/ipede/album-catalog/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

type HandlerAuth struct {
	authService domain.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService domain.AuthService, logger *zap.Logger) *HandlerAuth {
	return &HandlerAuth{
		authService: authService,
		logger:      logger,
	}
}

// LoginHandler godoc
// @Summary Login
// @Description Exchange username and password for an access and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body domain.LoginRequest true "User credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *HandlerAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.RespondWithError(w, errors.ErrCodeInvalidRequest, "invalid request body", nil, http.StatusBadRequest)
		return
	}

	var validation errors.ValidationErrors
	if strings.TrimSpace(req.Username) == "" {
		validation.Add("username", "username is required")
	}
	if req.Password == "" {
		validation.Add("password", "password is required")
	}
	if validation.HasErrors() {
		errors.RespondWithError(w, errors.ErrCodeValidation, "validation failed", validation.ToErrorDetails(), http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Debug("login failed", zap.Error(err), zap.String("username", req.Username))
		errors.RespondWithDomainError(w, err)
		return
	}

	h.respondJSON(w, resp)
}

// RefreshHandler godoc
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new access and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *HandlerAuth) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.RespondWithError(w, errors.ErrCodeInvalidRequest, "invalid request body", nil, http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		errors.RespondWithError(w, errors.ErrCodeValidation, "validation failed",
			[]errors.ErrorDetail{{Field: "refreshToken", Message: "refreshToken is required"}}, http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("refresh failed", zap.Error(err))
		errors.RespondWithDomainError(w, err)
		return
	}

	h.respondJSON(w, resp)
}

func (h *HandlerAuth) respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
