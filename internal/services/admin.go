package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ngo-site-backend/internal/models"
	"ngo-site-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = time.Hour

var (
	// ErrUsernameTaken is returned when registering an existing username
	ErrUsernameTaken = errors.New("admin already exists")
	// ErrInvalidCredentials is returned on failed login. Unknown username and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AdminStore handles admin account persistence
type AdminStore interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// AdminService handles back-office authentication
type AdminService struct {
	store     AdminStore
	jwtSecret string
}

// NewAdminService creates a new admin service
func NewAdminService(store AdminStore, jwtSecret string) *AdminService {
	return &AdminService{
		store:     store,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new admin account with a bcrypt-hashed password
func (s *AdminService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	exists, err := s.store.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

// Login verifies credentials and returns a signed JWT
func (s *AdminService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.store.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateJWT(admin.ID)
}

// GenerateJWT generates a JWT token for an admin
func (s *AdminService) GenerateJWT(adminID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"admin_id": adminID,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the admin ID
func (s *AdminService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	adminID, ok := claims["admin_id"].(string)
	if !ok {
		return "", fmt.Errorf("admin_id not found in token")
	}

	return adminID, nil
}
