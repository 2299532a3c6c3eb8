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

// BlogStore handles blog post persistence
type BlogStore interface {
	Create(ctx context.Context, blog *models.Blog) error
	List(ctx context.Context) ([]*models.Blog, error)
	Delete(ctx context.Context, id string) error
}

// BlogService handles blog posts linking to external articles
type BlogService struct {
	store   BlogStore
	storage ObjectStorage
}

// NewBlogService creates a new blog service
func NewBlogService(store BlogStore, storage ObjectStorage) *BlogService {
	return &BlogService{
		store:   store,
		storage: storage,
	}
}

// CreateBlogRequest carries the blog fields and cover image
type CreateBlogRequest struct {
	Title       string
	Date        time.Time
	Description string
	Link        string
	File        io.Reader
	Size        int64
	ContentType string
}

// Create stores the cover image and persists the blog post
func (s *BlogService) Create(ctx context.Context, req CreateBlogRequest) (*models.Blog, error) {
	if req.File == nil {
		return nil, fmt.Errorf("%w: cover image is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Link) == "" {
		return nil, fmt.Errorf("%w: link is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	url, key, err := s.storage.Put(ctx, "blogs", req.ContentType, req.File, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store cover image: %w", err)
	}

	blog := &models.Blog{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Date:        req.Date,
		Description: strings.TrimSpace(req.Description),
		Link:        strings.TrimSpace(req.Link),
		ImageURL:    url,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Create(ctx, blog); err != nil {
		cleanupObject(ctx, s.storage, key)
		return nil, fmt.Errorf("failed to save blog: %w", err)
	}

	return blog, nil
}

// List retrieves all blog posts, newest date first
func (s *BlogService) List(ctx context.Context) ([]*models.Blog, error) {
	return s.store.List(ctx)
}

// Delete removes a blog post
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
