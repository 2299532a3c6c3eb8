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

// GalleryHandler handles the photo gallery endpoints
type GalleryHandler struct {
	galleryService *services.GalleryService
}

// NewGalleryHandler creates a new gallery handler
func NewGalleryHandler(galleryService *services.GalleryService) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

// List handles GET /api/photos
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.galleryService.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list photos")
		respondError(w, "Error fetching photos", http.StatusInternalServerError)
		return
	}

	if photos == nil {
		photos = []*models.Photo{}
	}

	respondJSON(w, http.StatusOK, photos)
}

// Add handles POST /api/photos
func (h *GalleryHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "Photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	photo, err := h.galleryService.Add(r.Context(), services.AddPhotoRequest{
		Caption:     r.FormValue("caption"),
		File:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to add photo")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().Str("photo_id", photo.ID).Msg("Photo added")

	respondJSON(w, http.StatusCreated, photo)
}

// Delete handles DELETE /api/photos/{id}
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.galleryService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Photo not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("photo_id", id).Msg("Failed to delete photo")
		respondError(w, "Error deleting photo", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Photo deleted successfully"})
}
