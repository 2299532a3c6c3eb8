package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ngo-site-backend/internal/repository"
	"ngo-site-backend/internal/services"
)

// MessageResponse represents a plain message response
type MessageResponse struct {
	Message string `json:"message"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, MessageResponse{Message: message})
}

// statusFromError maps service errors onto HTTP status codes: validation
// failures are the client's fault, missing records are 404, the rest is 500
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrUnsupportedImageType):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// parseDate accepts RFC 3339 timestamps or plain dates from form fields
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
