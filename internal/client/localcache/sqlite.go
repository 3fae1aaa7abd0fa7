// Package localcache persists a small amount of auth metadata (email,
// envelope salt, verification ciphertext) in a local SQLite file, so a wrong
// passphrase can be rejected before any network call on subsequent logins.
// The derived key itself is never written here.
package localcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL
);
`

// Identity is the cached auth metadata for the last signed-in account.
type Identity struct {
	Email    string
	Salt     []byte
	Verifier []byte
}

// ErrEmpty is returned when no identity has been cached yet.
var ErrEmpty = errors.New("no cached identity")

// Cache is a key/value store over a local SQLite file.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache file at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (c *Cache) set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata[%s]: %w", key, err)
	}
	return nil
}

// SaveIdentity caches the auth metadata for the signed-in account,
// replacing whatever was there.
func (c *Cache) SaveIdentity(ctx context.Context, id Identity) error {
	if err := c.set(ctx, "email", []byte(id.Email)); err != nil {
		return err
	}
	if err := c.set(ctx, "salt", id.Salt); err != nil {
		return err
	}
	return c.set(ctx, "verifier", id.Verifier)
}

// LoadIdentity returns the cached auth metadata, or ErrEmpty when the cache
// has never been written.
func (c *Cache) LoadIdentity(ctx context.Context) (Identity, error) {
	email, err := c.get(ctx, "email")
	if err != nil {
		return Identity{}, err
	}
	salt, err := c.get(ctx, "salt")
	if err != nil && !errors.Is(err, ErrEmpty) {
		return Identity{}, err
	}
	verifier, err := c.get(ctx, "verifier")
	if err != nil && !errors.Is(err, ErrEmpty) {
		return Identity{}, err
	}
	return Identity{Email: string(email), Salt: salt, Verifier: verifier}, nil
}

// Clear wipes the cached metadata, e.g. when the account is deleted.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("clear metadata: %w", err)
	}
	return nil
}
