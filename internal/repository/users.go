// Package repository provides persistence implementations for the
// credential and document store services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avolkov/chalkboard/internal/models"
	"github.com/lib/pq"
)

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when registering an already-taken email.
var ErrDuplicateEmail = errors.New("email already registered")

// PostgresUsersRepository implements user persistence against PostgreSQL.
type PostgresUsersRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUsersRepository creates a new PostgresUsersRepository with the
// given database connection.
func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{DB: db}
}

// CreateUser inserts a new user row. Returns ErrDuplicateEmail when the
// email is already registered.
func (r *PostgresUsersRepository) CreateUser(ctx context.Context, u *models.User) error {
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, encryption_salt, key_verifier, settings)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.PasswordHash, u.EncryptionSalt, u.KeyVerifier, settings)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches a user row by email. Returns ErrNotFound when no
// such user exists.
func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var (
		u        models.User
		settings []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, encryption_salt, key_verifier, settings, created_at
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.EncryptionSalt, &u.KeyVerifier, &settings, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := json.Unmarshal(settings, &u.Settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &u, nil
}

// UpdateSettings replaces the stored settings object for the given email.
// Returns ErrNotFound when the user does not exist.
func (r *PostgresUsersRepository) UpdateSettings(ctx context.Context, email string, s models.Settings) error {
	settings, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET settings = $2 WHERE email = $1`, email, settings)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user and all of the user's notes in a single
// transaction, so a failure leaves the account intact.
func (r *PostgresUsersRepository) DeleteUser(ctx context.Context, email string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE author = $1`, email); err != nil {
		return fmt.Errorf("delete notes: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
