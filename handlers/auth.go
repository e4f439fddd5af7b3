package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jobdeck/jobdeck/services"
)

// AuthHandler handles authentication-related endpoints
type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Status string        `json:"status"`
	Token  string        `json:"token"`
	User   services.User `json:"user"`
}

// SignUp creates an account and returns a session token.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	user, token, err := h.authService.SignUp(req.Email, req.Password)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{Status: "success", Token: token, User: user})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	user, token, err := h.authService.SignIn(req.Email, req.Password)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{Status: "success", Token: token, User: user})
}

// VerifyToken checks if a session token is valid
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token, malformed := bearerToken(r)
	if malformed {
		http.Error(w, "invalid authorization format", http.StatusUnauthorized)
		return
	}
	if token == "" {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "valid",
		"user":   user,
	})
}

func respondAuthError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		http.Error(w, validationErr.Message, http.StatusBadRequest)
		return
	}
	respondError(w, err)
}
