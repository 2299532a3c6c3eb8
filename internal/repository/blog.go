package repository

import (
	"context"
	"fmt"

	"ngo-site-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BlogRepository handles database operations for blog posts
type BlogRepository struct {
	db *pgxpool.Pool
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{db: db}
}

// Create creates a new blog post
func (r *BlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	query := `
		INSERT INTO blogs (id, title, date, description, link, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		blog.ID, blog.Title, blog.Date, blog.Description, blog.Link, blog.ImageURL, blog.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create blog: %w", err)
	}
	return nil
}

// List retrieves all blog posts, newest date first
func (r *BlogRepository) List(ctx context.Context) ([]*models.Blog, error) {
	query := `
		SELECT id, title, date, description, link, image_url, created_at
		FROM blogs
		ORDER BY date DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer rows.Close()

	var blogs []*models.Blog
	for rows.Next() {
		var b models.Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Date, &b.Description, &b.Link, &b.ImageURL, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blogs: %w", err)
	}

	return blogs, nil
}

// Delete removes a blog post
func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
