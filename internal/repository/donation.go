package repository

import (
	"context"
	"errors"
	"fmt"

	"ngo-site-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DonationRepository handles database operations for donations
type DonationRepository struct {
	db *pgxpool.Pool
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create creates a new donation
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	query := `
		INSERT INTO donations (id, donor_name, email, phone, amount, screenshot_url, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		donation.ID, donation.DonorName, donation.Email, donation.Phone,
		donation.Amount, donation.ScreenshotURL, donation.IsVerified, donation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}
	return nil
}

// List retrieves all donations, newest first
func (r *DonationRepository) List(ctx context.Context) ([]*models.Donation, error) {
	query := `
		SELECT id, donor_name, email, phone, amount, screenshot_url, is_verified, created_at
		FROM donations
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		var d models.Donation
		err := rows.Scan(
			&d.ID, &d.DonorName, &d.Email, &d.Phone,
			&d.Amount, &d.ScreenshotURL, &d.IsVerified, &d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}

	return donations, nil
}

// SetVerified marks a donation as verified and returns the updated record.
// Verification is terminal, the flag is never reset.
func (r *DonationRepository) SetVerified(ctx context.Context, id string) (*models.Donation, error) {
	query := `
		UPDATE donations
		SET is_verified = TRUE
		WHERE id = $1
		RETURNING id, donor_name, email, phone, amount, screenshot_url, is_verified, created_at
	`
	var d models.Donation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.DonorName, &d.Email, &d.Phone,
		&d.Amount, &d.ScreenshotURL, &d.IsVerified, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify donation: %w", err)
	}
	return &d, nil
}

// Delete removes a donation permanently
func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM donations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
