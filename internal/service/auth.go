// Package service provides business-logic services for authentication and
// note management, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/chalkboard/internal/auth"
	"github.com/avolkov/chalkboard/internal/models"
	"github.com/avolkov/chalkboard/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on a bad email/password pair. It is
// deliberately indistinct about which of the two was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when registering an already-used email.
var ErrEmailTaken = errors.New("email already registered")

// tokenValidity bounds how long an issued session token is accepted.
const tokenValidity = 24 * time.Hour

// UsersRepository defines the persistence operations required by the
// authentication service.
type UsersRepository interface {
	// CreateUser creates a new user record.
	CreateUser(ctx context.Context, u *models.User) error
	// GetUserByEmail fetches the user record for the given email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateSettings replaces the user's stored settings.
	UpdateSettings(ctx context.Context, email string, s models.Settings) error
	// DeleteUser removes the user and all owned notes atomically.
	DeleteUser(ctx context.Context, email string) error
}

// AuthService implements registration, login and account management by
// delegating to a UsersRepository.
type AuthService struct {
	repo        UsersRepository
	tokenSecret []byte
}

// NewAuthService constructs a new AuthService using the provided repository
// and token signing secret.
func NewAuthService(repo UsersRepository, tokenSecret []byte) *AuthService {
	return &AuthService{repo: repo, tokenSecret: tokenSecret}
}

// Register creates a new account. The optional encryptionSalt and
// keyVerifier come from the client-side envelope setup and are stored
// opaquely; a nil salt means the account stays unencrypted permanently.
// Returns the created user and a session token.
func (s *AuthService) Register(ctx context.Context, email, password string, encryptionSalt, keyVerifier []byte) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   hash,
		EncryptionSalt: encryptionSalt,
		KeyVerifier:    keyVerifier,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := auth.GenerateToken(email, s.tokenSecret, tokenValidity)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Login verifies the email/password pair and returns the user together with
// a fresh session token. An unknown email and a wrong password both map to
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(email, s.tokenSecret, tokenValidity)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// SaveSettings persists the user's display preferences.
func (s *AuthService) SaveSettings(ctx context.Context, email string, settings models.Settings) error {
	return s.repo.UpdateSettings(ctx, email, settings)
}

// DeleteAccount removes the identity and every note it owns. The caller's
// session token stays formally valid until expiry but no longer resolves to
// a user, so subsequent requests fail.
func (s *AuthService) DeleteAccount(ctx context.Context, email string) error {
	return s.repo.DeleteUser(ctx, email)
}
