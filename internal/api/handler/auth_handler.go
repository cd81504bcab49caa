package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"truetime.service/internal/api/middleware"
	"truetime.service/internal/core"
	"truetime.service/internal/core/model"
)

type AuthHandler struct {
	Service *core.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Service error during login")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

type createUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	role, err := model.RoleFromString(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown role")
		return
	}

	user, err := h.Service.CreateUser(r.Context(), req.Email, req.FullName, req.Password, role)
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			writeError(w, http.StatusConflict, "A user with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Service error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Service error listing users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Me returns the profile of the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.Subject)
	if err != nil {
		if core.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Service error loading user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
