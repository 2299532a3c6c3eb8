package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"ngo-site-backend/internal/models"

	"github.com/google/uuid"
)

// DonationStore handles donation persistence
type DonationStore interface {
	Create(ctx context.Context, donation *models.Donation) error
	List(ctx context.Context) ([]*models.Donation, error)
	SetVerified(ctx context.Context, id string) (*models.Donation, error)
	Delete(ctx context.Context, id string) error
}

// DonationService handles the donation intake and verification workflow
type DonationService struct {
	store   DonationStore
	storage ObjectStorage
}

// NewDonationService creates a new donation service
func NewDonationService(store DonationStore, storage ObjectStorage) *DonationService {
	return &DonationService{
		store:   store,
		storage: storage,
	}
}

// SubmitDonationRequest carries the donor form fields and the proof image
type SubmitDonationRequest struct {
	DonorName   string
	Email       string
	Phone       string
	Amount      float64
	File        io.Reader
	Size        int64
	ContentType string
}

// Submit validates a submission, stores the proof image and persists the record
func (s *DonationService) Submit(ctx context.Context, req SubmitDonationRequest) (*models.Donation, error) {
	if req.File == nil {
		return nil, fmt.Errorf("%w: payment screenshot is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.DonorName) == "" {
		return nil, fmt.Errorf("%w: donor name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrInvalidInput)
	}

	url, key, err := s.storage.Put(ctx, "donations", req.ContentType, req.File, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment screenshot: %w", err)
	}

	donation := &models.Donation{
		ID:            uuid.New().String(),
		DonorName:     strings.TrimSpace(req.DonorName),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Amount:        req.Amount,
		ScreenshotURL: url,
		IsVerified:    false,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.Create(ctx, donation); err != nil {
		cleanupObject(ctx, s.storage, key)
		return nil, fmt.Errorf("failed to save donation: %w", err)
	}

	return donation, nil
}

// List retrieves all donations, newest first
func (s *DonationService) List(ctx context.Context) ([]*models.Donation, error) {
	return s.store.List(ctx)
}

// Verify marks a donation as verified. Re-verifying is a no-op.
func (s *DonationService) Verify(ctx context.Context, id string) (*models.Donation, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.store.SetVerified(ctx, id)
}

// Delete removes a donation permanently
func (s *DonationService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
