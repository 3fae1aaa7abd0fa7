package service

import (
	"context"
	"errors"
	"testing"

	"github.com/avolkov/chalkboard/internal/auth"
	"github.com/avolkov/chalkboard/internal/models"
	"github.com/avolkov/chalkboard/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type mockUsersRepo struct {
	CreateUserFunc     func(ctx context.Context, u *models.User) error
	GetUserByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	UpdateSettingsFunc func(ctx context.Context, email string, s models.Settings) error
	DeleteUserFunc     func(ctx context.Context, email string) error
}

func (m *mockUsersRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.CreateUserFunc(ctx, u)
}
func (m *mockUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetUserByEmailFunc(ctx, email)
}
func (m *mockUsersRepo) UpdateSettings(ctx context.Context, email string, s models.Settings) error {
	return m.UpdateSettingsFunc(ctx, email, s)
}
func (m *mockUsersRepo) DeleteUser(ctx context.Context, email string) error {
	return m.DeleteUserFunc(ctx, email)
}

var testSecret = []byte("test-secret")

func TestRegister_Success(t *testing.T) {
	var created *models.User
	repo := &mockUsersRepo{
		CreateUserFunc: func(ctx context.Context, u *models.User) error {
			created = u
			return nil
		},
	}
	svc := NewAuthService(repo, testSecret)

	u, token, err := svc.Register(context.Background(), "user@example.com", "password123", []byte("salt"), []byte("verifier"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if created == nil {
		t.Fatalf("expected CreateUser to be called")
	}
	if u.ID == "" {
		t.Errorf("expected a generated user id")
	}
	if string(created.EncryptionSalt) != "salt" || string(created.KeyVerifier) != "verifier" {
		t.Errorf("envelope metadata not stored: %+v", created)
	}
	if bcrypt.CompareHashAndPassword(created.PasswordHash, []byte("password123")) != nil {
		t.Errorf("stored hash does not verify against the password")
	}

	email, err := auth.GetEmailFromToken(token, testSecret)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if email != "user@example.com" {
		t.Errorf("token subject = %q; want user@example.com", email)
	}
}

func TestRegister_EmptyCredentials(t *testing.T) {
	svc := NewAuthService(&mockUsersRepo{}, testSecret)

	_, _, err := svc.Register(context.Background(), "", "password123", nil, nil)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v; want ErrInvalidCredentials", err)
	}
	_, _, err = svc.Register(context.Background(), "user@example.com", "", nil, nil)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v; want ErrInvalidCredentials", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUsersRepo{
		CreateUserFunc: func(ctx context.Context, u *models.User) error {
			return repository.ErrDuplicateEmail
		},
	}
	svc := NewAuthService(repo, testSecret)

	_, _, err := svc.Register(context.Background(), "user@example.com", "password123", nil, nil)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("error = %v; want ErrEmailTaken", err)
	}
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	repo := &mockUsersRepo{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: "uid-1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc := NewAuthService(repo, testSecret)

	u, token, err := svc.Login(context.Background(), "user@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if u.ID != "uid-1" {
		t.Errorf("user ID = %q; want uid-1", u.ID)
	}
	if _, err := auth.GetEmailFromToken(token, testSecret); err != nil {
		t.Errorf("issued token does not parse: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo := &mockUsersRepo{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{Email: email, PasswordHash: hash}, nil
		},
	}
	svc := NewAuthService(repo, testSecret)

	_, _, err := svc.Login(context.Background(), "user@example.com", "wrong password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v; want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &mockUsersRepo{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := NewAuthService(repo, testSecret)

	_, _, err := svc.Login(context.Background(), "missing@example.com", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v; want ErrInvalidCredentials, indistinct from wrong password", err)
	}
}

func TestDeleteAccount_Delegates(t *testing.T) {
	var deleted string
	repo := &mockUsersRepo{
		DeleteUserFunc: func(ctx context.Context, email string) error {
			deleted = email
			return nil
		},
	}
	svc := NewAuthService(repo, testSecret)

	if err := svc.DeleteAccount(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}
	if deleted != "user@example.com" {
		t.Errorf("deleted = %q; want user@example.com", deleted)
	}
}
