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

// PhotoStore handles gallery photo persistence
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	List(ctx context.Context) ([]*models.Photo, error)
	Delete(ctx context.Context, id string) error
}

// GalleryService handles the public photo gallery
type GalleryService struct {
	store   PhotoStore
	storage ObjectStorage
}

// NewGalleryService creates a new gallery service
func NewGalleryService(store PhotoStore, storage ObjectStorage) *GalleryService {
	return &GalleryService{
		store:   store,
		storage: storage,
	}
}

// AddPhotoRequest carries the photo file and its optional caption
type AddPhotoRequest struct {
	Caption     string
	File        io.Reader
	Size        int64
	ContentType string
}

// Add stores the image and persists the photo record
func (s *GalleryService) Add(ctx context.Context, req AddPhotoRequest) (*models.Photo, error) {
	if req.File == nil {
		return nil, fmt.Errorf("%w: photo file is required", ErrInvalidInput)
	}

	url, key, err := s.storage.Put(ctx, "gallery", req.ContentType, req.File, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photo := &models.Photo{
		ID:        uuid.New().String(),
		ImageURL:  url,
		CreatedAt: time.Now().UTC(),
	}
	if caption := strings.TrimSpace(req.Caption); caption != "" {
		photo.Caption = &caption
	}

	if err := s.store.Create(ctx, photo); err != nil {
		cleanupObject(ctx, s.storage, key)
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	return photo, nil
}

// List retrieves all photos, newest first
func (s *GalleryService) List(ctx context.Context) ([]*models.Photo, error) {
	return s.store.List(ctx)
}

// Delete removes a photo
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
