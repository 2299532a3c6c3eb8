package services

import (
	"errors"

	"ngo-site-backend/internal/repository"

	"github.com/google/uuid"
)

// ErrInvalidInput is returned when a request fails validation
var ErrInvalidInput = errors.New("invalid input")

// validateID rejects path ids that are not uuids before they reach the
// database. pgx fails to encode them as uuid parameters, and a malformed
// id can never match a record, so it is treated as not found.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	return nil
}
