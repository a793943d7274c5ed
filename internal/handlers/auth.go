package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/services"
	"github.com/campushub/backend/internal/store"
	"github.com/campushub/backend/types"
	"github.com/go-chi/chi/v5"
)

// resetRequestResponse is returned by RequestPasswordReset on every
// path, so the response never discloses whether an account exists.
const resetRequestResponse = "If the email exists, a reset link has been sent"

// AuthHandler provides registration, login, and the password
// lifecycle over cookie sessions.
type AuthHandler struct {
	users     *services.UserService
	passwords *services.PasswordService
	sessions  *auth.SessionManager
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(users *services.UserService, passwords *services.PasswordService, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{
		users:     users,
		passwords: passwords,
		sessions:  sessions,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler, gate *auth.Authenticator) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(gate.RequireAuth).Post("/logout", handler.Logout)
	r.With(gate.RequireAuth).Post("/change-password", handler.ChangePassword)
	r.Post("/reset-password-request", handler.RequestPasswordReset)
	r.Post("/reset-password/{token}", handler.ResetPassword)
}

// Register creates a new account and starts a session for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.Password != req.PasswordConfirm {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Role, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, services.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "invalid role")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	cookie, err := h.sessions.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	http.SetCookie(w, cookie)

	user.PasswordHash = ""
	writeJSON(w, http.StatusCreated, AuthResponse{Message: "User registered successfully", User: user})
}

// Login verifies credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	cookie, err := h.sessions.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	http.SetCookie(w, cookie)

	user.PasswordHash = ""
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Login successful", User: user})
}

// Logout clears the session cookie. The token itself stays valid
// until expiry; only the client's copy is discarded.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessions.Clear())
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// ChangePassword rotates the password of the authenticated user.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		writeError(w, http.StatusBadRequest, "all password fields are required")
		return
	}

	err := h.passwords.Change(r.Context(), user.ID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordMismatch):
			writeError(w, http.StatusBadRequest, "new passwords do not match")
		case errors.Is(err, services.ErrWrongPassword):
			writeError(w, http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Password changed successfully")
}

// RequestPasswordReset starts the forgot-password flow. The response
// is identical whether or not the address belongs to an account.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.passwords.RequestReset(r.Context(), req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	writeMessage(w, http.StatusOK, resetRequestResponse)
}

// ResetPassword completes the forgot-password flow with the token
// from the reset link.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.NewPassword == "" || req.ConfirmPassword == "" {
		writeError(w, http.StatusBadRequest, "all fields are required")
		return
	}

	err := h.passwords.Reset(r.Context(), token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordMismatch):
			writeError(w, http.StatusBadRequest, "passwords do not match")
		case errors.Is(err, services.ErrResetTokenExpired):
			writeError(w, http.StatusBadRequest, "reset token has expired")
		case errors.Is(err, services.ErrResetTokenInvalid):
			writeError(w, http.StatusBadRequest, "invalid reset token")
		default:
			writeError(w, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successfully")
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Role            string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ResetRequestRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type AuthResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}
