package models

import "time"

// Donation represents one donor's claimed contribution with proof of payment
type Donation struct {
	ID            string    `json:"id"`
	DonorName     string    `json:"donorName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Amount        float64   `json:"amount"`
	ScreenshotURL string    `json:"screenshotUrl"`
	IsVerified    bool      `json:"isVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Event represents an entry on the public work timeline
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Photo represents a gallery photo
type Photo struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"imageUrl"`
	Caption   *string   `json:"caption,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Blog represents a blog post linking to an external article
type Blog struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Admin represents a back-office account
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
