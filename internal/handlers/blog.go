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

// BlogHandler handles the blog endpoints
type BlogHandler struct {
	blogService *services.BlogService
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(blogService *services.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

// List handles GET /api/blogs
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list blogs")
		respondError(w, "Error fetching blogs", http.StatusInternalServerError)
		return
	}

	if blogs == nil {
		blogs = []*models.Blog{}
	}

	respondJSON(w, http.StatusOK, blogs)
}

// Create handles POST /api/blogs
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	blog, err := h.blogService.Create(r.Context(), services.CreateBlogRequest{
		Title:       r.FormValue("title"),
		Date:        date,
		Description: r.FormValue("description"),
		Link:        r.FormValue("link"),
		File:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		log.Error().Err(err).Str("title", r.FormValue("title")).Msg("Failed to create blog")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().Str("blog_id", blog.ID).Str("title", blog.Title).Msg("Blog created")

	respondJSON(w, http.StatusCreated, blog)
}

// Delete handles DELETE /api/blogs/{id}
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.blogService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Blog not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("blog_id", id).Msg("Failed to delete blog")
		respondError(w, "Error deleting blog", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Blog deleted successfully"})
}
