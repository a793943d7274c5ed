package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/services"
	"github.com/campushub/backend/internal/store"
	"github.com/campushub/backend/types"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides admin user management and the profile routes.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// UserRouter registers user routes. Listing and administrative
// updates are admin-only; profile routes require any session.
func UserRouter(r chi.Router, handler *UserHandler, gate *auth.Authenticator) {
	adminOnly := auth.RequireRoles(types.RoleAdmin)

	r.With(gate.RequireAuth, adminOnly).Get("/users", handler.ListUsers)
	r.With(gate.RequireAuth, adminOnly).Put("/users/{userID}", handler.UpdateUser)
	r.With(gate.RequireAuth, adminOnly).Delete("/users/{userID}", handler.DeleteUser)
	r.With(gate.RequireAuth).Get("/profile", handler.GetProfile)
	r.With(gate.RequireAuth).Put("/profile", handler.UpdateProfile)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, UserListResponse{Users: users, Results: len(users)})
}

// UpdateUser applies administrative edits: role, deactivation, and
// profile fields. Absent fields are left unchanged.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = types.Role(*req.Role)
	}
	if req.IsDeleted != nil {
		user.IsDeleted = *req.IsDeleted
	}
	applyProfileFields(&user, req.ProfileFields)

	updated, err := h.users.Update(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "invalid role")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	updated.PasswordHash = ""
	writeJSON(w, http.StatusOK, updated)
}

// DeleteUser deactivates an account. The row stays for audit and so
// the id cannot be reused.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	writeMessage(w, http.StatusOK, "User deactivated")
}

// GetProfile returns the authenticated user, freshly loaded.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), current.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	user.PasswordHash = ""
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile lets a user edit their own profile fields. Role and
// lifecycle flags are not editable here.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.users.GetByID(r.Context(), current.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	applyProfileFields(&user, req.ProfileFields)

	updated, err := h.users.Update(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	updated.PasswordHash = ""
	writeJSON(w, http.StatusOK, updated)
}

// ProfileFields are the free-form user attributes shared by the
// profile and admin update payloads.
type ProfileFields struct {
	Bio         *string `json:"bio"`
	PicturePath *string `json:"picture_path"`
	School      *string `json:"school"`
}

type UserUpdateRequest struct {
	Name      *string `json:"name"`
	Role      *string `json:"role"`
	IsDeleted *bool   `json:"is_deleted"`
	ProfileFields
}

type ProfileUpdateRequest struct {
	Name *string `json:"name"`
	ProfileFields
}

type UserListResponse struct {
	Users   []types.User `json:"users"`
	Results int          `json:"results"`
}

func applyProfileFields(user *types.User, fields ProfileFields) {
	if fields.Bio != nil {
		user.Bio = *fields.Bio
	}
	if fields.PicturePath != nil {
		user.PicturePath = *fields.PicturePath
	}
	if fields.School != nil {
		user.School = *fields.School
	}
}

func parseUserID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}
