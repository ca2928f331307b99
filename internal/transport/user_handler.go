package transport

import (
	"net/http"

	"marketplace/internal/domain"
	"marketplace/internal/middleware"
	"marketplace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateProfileRequest updates name and email only
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// UpdatePasswordRequest carries the new raw password
type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,max=40"`
}

// UpdateRolesRequest carries free-form role tokens; an empty set resets the
// account to exactly {USER}.
type UpdateRolesRequest struct {
	Roles []string `json:"roles"`
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers the user routes. Listing deliberately requires
// the USER role (observed behavior, not tightened to SUPERUSER); role
// updates and deletion are SUPERUSER only; profile and password updates are
// checked per-request for self-or-superuser.
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(middleware.RequireAnyRole([]domain.Role{domain.RoleUser}, h.logger)).
			Get("/", h.List)
		r.With(middleware.RequireAnyRole([]domain.Role{domain.RoleUser, domain.RoleSuperuser}, h.logger)).
			Get("/{id}", h.GetByID)

		r.Put("/{id}", h.UpdateProfile)
		r.Put("/{id}/password", h.UpdatePassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperuser(h.logger))
			r.Put("/{id}/roles", h.UpdateRoles)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// GetByID handles fetching one user
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toUserResponse(user))
}

// List handles fetching all users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	middleware.RespondWithJSON(w, http.StatusOK, responses)
}

// UpdateProfile handles name/email updates for self or by a superuser
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if !middleware.CanActOnUser(r, id.String()) {
		middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	var req UpdateProfileRequest
	if !decodeAndRespond(w, r, h.logger, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), id, req.Name, req.Email)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("User profile updated", zap.String("user_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdatePassword handles password updates for self or by a superuser
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if !middleware.CanActOnUser(r, id.String()) {
		middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	var req UpdatePasswordRequest
	if !decodeAndRespond(w, r, h.logger, &req) {
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), id, req.NewPassword); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("User password updated", zap.String("user_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// UpdateRoles handles role set replacement (superuser only)
func (h *UserHandler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateRolesRequest
	if !decodeAndRespond(w, r, h.logger, &req) {
		return
	}

	user, err := h.userService.UpdateRoles(r.Context(), id, req.Roles)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("User roles updated", zap.String("user_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete handles account deletion (superuser only)
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("User deleted", zap.String("user_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
