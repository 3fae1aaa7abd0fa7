// Package api implements the HTTP client for the Chalkboard API: the
// credential-store contract (register, login, account deletion) and the
// document-store contract (point lookups, author-scoped list, full-replace
// writes, merge updates, single and atomic batch deletes).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avolkov/chalkboard/internal/models"
)

var (
	// ErrNotFound is returned for operations addressing an absent record.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for bad credentials or a dead session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
)

// Client talks to the Chalkboard API server. It carries the session token
// issued at login; SignOut drops it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New constructs a Client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type credentialsRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	EncryptionSalt []byte `json:"encryptionSalt,omitempty"`
	KeyVerifier    []byte `json:"keyVerifier,omitempty"`
}

type sessionResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

// Register creates a new account. Salt and verifier come from the envelope
// setup and may be nil for an unencrypted account. On success the client
// holds the issued session token.
func (c *Client) Register(ctx context.Context, email, password string, salt, verifier []byte) (models.Profile, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/api/register",
		credentialsRequest{Email: email, Password: password, EncryptionSalt: salt, KeyVerifier: verifier}, &resp)
	if err != nil {
		return models.Profile{}, err
	}
	c.token = resp.Token
	return resp.Profile, nil
}

// Login authenticates and returns the profile, which carries the envelope
// salt and verifier when the account is encrypted.
func (c *Client) Login(ctx context.Context, email, password string) (models.Profile, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/api/login",
		credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return models.Profile{}, err
	}
	c.token = resp.Token
	return resp.Profile, nil
}

// SignOut drops the session token. Tokens are stateless on the server, so
// forgetting it is the whole operation.
func (c *Client) SignOut() {
	c.token = ""
}

// DeleteAccount removes the identity and all of its notes, then drops the
// session token.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/account", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// SaveSettings persists display preferences into the identity's profile.
func (c *Client) SaveSettings(ctx context.Context, settings models.Settings) error {
	return c.do(ctx, http.MethodPut, "/api/settings", settings, nil)
}

// List returns the identity's notes ordered by updatedAt descending.
func (c *Client) List(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Get fetches one note by id. Absent records yield ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+id, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Put writes the note with full-replace semantics, overwriting any prior
// version stored under the same id.
func (c *Client) Put(ctx context.Context, n *models.Note) error {
	return c.do(ctx, http.MethodPut, "/api/notes/"+n.ID, n, nil)
}

// Share merges the share fields into the stored note without touching the
// rest of the record.
func (c *Client) Share(ctx context.Context, id string, upd models.ShareUpdate) error {
	return c.do(ctx, http.MethodPatch, "/api/notes/"+id, upd, nil)
}

// Delete removes one note. Deleting an already-deleted id yields
// ErrNotFound.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+id, nil, nil)
}

// DeleteBatch removes exactly the given ids as one atomic batch.
func (c *Client) DeleteBatch(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, "/api/notes/batch-delete",
		map[string][]string{"ids": ids}, nil)
}

// DeleteAll removes every note of the identity and reports the count.
func (c *Client) DeleteAll(ctx context.Context) (int64, error) {
	var resp map[string]int64
	if err := c.do(ctx, http.MethodDelete, "/api/notes", nil, &resp); err != nil {
		return 0, err
	}
	return resp["deleted"], nil
}

// do sends one JSON request and decodes the JSON response into out (when
// non-nil), mapping HTTP status codes onto the package's sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return ErrEmailTaken
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
