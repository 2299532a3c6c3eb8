package handlers

import (
	"errors"
	"net/http"

	"ngo-site-backend/internal/models"
	"ngo-site-backend/internal/repository"
	"ngo-site-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// EventHandler handles the work timeline endpoints
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list events")
		respondError(w, "Error fetching events", http.StatusInternalServerError)
		return
	}

	if events == nil {
		events = []*models.Event{}
	}

	respondJSON(w, http.StatusOK, events)
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "Cover image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	date, err := parseDate(r.FormValue("date"))
	if err != nil {
		respondError(w, "date must be a valid date", http.StatusBadRequest)
		return
	}

	event, err := h.eventService.Create(r.Context(), services.CreateEventRequest{
		Title:       r.FormValue("title"),
		Date:        date,
		Description: r.FormValue("description"),
		File:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		log.Error().Err(err).Str("title", r.FormValue("title")).Msg("Failed to create event")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().Str("event_id", event.ID).Str("title", event.Title).Msg("Event created")

	respondJSON(w, http.StatusCreated, event)
}

// Delete handles DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.eventService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Event not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("event_id", id).Msg("Failed to delete event")
		respondError(w, "Error deleting event", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}
