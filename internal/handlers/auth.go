package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ngo-site-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles admin authentication
type AuthHandler struct {
	adminService *services.AdminService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(adminService *services.AdminService) *AuthHandler {
	return &AuthHandler{adminService: adminService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.adminService.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to register admin")
		respondError(w, "Failed to register admin", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", req.Username).Msg("Admin registered")

	respondJSON(w, http.StatusCreated, MessageResponse{Message: "Admin registered successfully"})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.adminService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, "Invalid credentials", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to log in admin")
		respondError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", req.Username).Msg("Admin logged in")

	respondJSON(w, http.StatusOK, LoginResponse{Token: token, Message: "Login Successful"})
}
