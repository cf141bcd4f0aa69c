package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/ipede/album-catalog/internal/interfaces/http/dto"
	"github.com/ipede/album-catalog/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

const defaultListLimit = 10

type HandlerUser struct {
	userService domain.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService domain.UserService, logger *zap.Logger) *HandlerUser {
	return &HandlerUser{
		userService: userService,
		logger:      logger,
	}
}

// MeHandler godoc
// @Summary Current user
// @Description Profile of the authenticated caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Success 200 {object} dto.PrincipalResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.MessageResponse
// @Router /usuarios/me [get]
func (h *HandlerUser) MeHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		errors.RespondWithError(w, errors.ErrCodeAuthentication, "Unauthorized", nil, http.StatusUnauthorized)
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), principal.Username)
	switch {
	case err == nil:
		h.respondJSON(w, dto.NewUserResponse(user))
	case stderrors.Is(err, domain.ErrUserNotFound):
		// Tokens minted for subjects without a stored profile still describe a caller.
		h.respondJSON(w, dto.NewPrincipalResponse(principal))
	default:
		h.logger.Error("failed to get current user", zap.Error(err), zap.String("username", principal.Username))
		errors.RespondWithDomainError(w, err)
	}
}

// ListUsersHandler godoc
// @Summary List users
// @Description Paginated list of users, admin only
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.MessageResponse
// @Router /usuarios [get]
func (h *HandlerUser) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	var validation errors.ValidationErrors
	limit := queryInt(r, "limit", defaultListLimit, &validation)
	offset := queryInt(r, "offset", 0, &validation)
	if validation.HasErrors() {
		errors.RespondWithError(w, errors.ErrCodeValidation, "invalid pagination", validation.ToErrorDetails(), http.StatusBadRequest)
		return
	}

	users, err := h.userService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		errors.RespondWithDomainError(w, err)
		return
	}

	response := make([]*dto.UserResponse, len(users))
	for i, user := range users {
		response[i] = dto.NewUserResponse(user)
	}
	h.respondJSON(w, response)
}

func (h *HandlerUser) respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func queryInt(r *http.Request, key string, def int, validation *errors.ValidationErrors) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		validation.Add(key, key+" must be a non-negative integer")
		return def
	}
	return v
}
