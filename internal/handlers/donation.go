package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ngo-site-backend/internal/models"
	"ngo-site-backend/internal/repository"
	"ngo-site-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxUploadMemory = 10 << 20

// DonationHandler handles the donation intake and verification endpoints
type DonationHandler struct {
	donationService *services.DonationService
	feed            *services.FeedHub
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *services.DonationService, feed *services.FeedHub) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		feed:            feed,
	}
}

// Submit handles POST /api/donations
func (h *DonationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		respondError(w, "Payment screenshot is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		respondError(w, "amount must be a number", http.StatusBadRequest)
		return
	}

	donation, err := h.donationService.Submit(ctx, services.SubmitDonationRequest{
		DonorName:   r.FormValue("donorName"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Amount:      amount,
		File:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("donor_name", r.FormValue("donorName")).
			Msg("Failed to submit donation")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("donation_id", donation.ID).
		Float64("amount", donation.Amount).
		Msg("Donation submitted")

	h.feed.Broadcast(services.FeedMessage{Type: services.FeedDonationCreated, Data: donation})

	respondJSON(w, http.StatusCreated, donation)
}

// List handles GET /api/donations
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	donations, err := h.donationService.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list donations")
		respondError(w, "Error fetching donations", http.StatusInternalServerError)
		return
	}

	if donations == nil {
		donations = []*models.Donation{}
	}

	respondJSON(w, http.StatusOK, donations)
}

// Verify handles PUT /api/donations/{id}/verify
func (h *DonationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	donation, err := h.donationService.Verify(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Donation not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("donation_id", id).Msg("Failed to verify donation")
		respondError(w, "Error updating status", http.StatusInternalServerError)
		return
	}

	log.Info().Str("donation_id", id).Msg("Donation verified")

	h.feed.Broadcast(services.FeedMessage{Type: services.FeedDonationVerified, Data: donation})

	respondJSON(w, http.StatusOK, donation)
}

// Delete handles DELETE /api/donations/{id}
func (h *DonationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.donationService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Donation not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("donation_id", id).Msg("Failed to delete donation")
		respondError(w, "Error deleting donation", http.StatusInternalServerError)
		return
	}

	log.Info().Str("donation_id", id).Msg("Donation deleted")

	h.feed.Broadcast(services.FeedMessage{
		Type: services.FeedDonationDeleted,
		Data: map[string]string{"id": id},
	})

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Donation deleted successfully"})
}
