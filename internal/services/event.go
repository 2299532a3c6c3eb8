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

// EventStore handles event persistence
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	List(ctx context.Context) ([]*models.Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService handles the public work timeline
type EventService struct {
	store   EventStore
	storage ObjectStorage
}

// NewEventService creates a new event service
func NewEventService(store EventStore, storage ObjectStorage) *EventService {
	return &EventService{
		store:   store,
		storage: storage,
	}
}

// CreateEventRequest carries the event fields and cover image
type CreateEventRequest struct {
	Title       string
	Date        time.Time
	Description string
	File        io.Reader
	Size        int64
	ContentType string
}

// Create stores the cover image and persists the event
func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if req.File == nil {
		return nil, fmt.Errorf("%w: cover image is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	url, key, err := s.storage.Put(ctx, "events", req.ContentType, req.File, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store cover image: %w", err)
	}

	event := &models.Event{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Date:        req.Date,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    url,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Create(ctx, event); err != nil {
		cleanupObject(ctx, s.storage, key)
		return nil, fmt.Errorf("failed to save event: %w", err)
	}

	return event, nil
}

// List retrieves all events, newest date first
func (s *EventService) List(ctx context.Context) ([]*models.Event, error) {
	return s.store.List(ctx)
}

// Delete removes an event
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
