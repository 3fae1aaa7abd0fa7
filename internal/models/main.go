// Package models defines the core data structures for users and notes.
package models

import "time"

// Note is the central entity: one document in the notes collection,
// keyed by ID and scoped to its author.
type Note struct {
	// ID is the unique identifier, assigned at creation and immutable.
	ID string `json:"id"`
	// Title is the note heading. Ciphertext when Encrypted is true.
	Title string `json:"title"`
	// Body is the note text. Ciphertext when Encrypted is true.
	Body string `json:"body"`
	// CreatedAt is set once at creation and never overwritten.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is refreshed on every save.
	UpdatedAt time.Time `json:"updatedAt"`
	// Author is the owning identity's email; the sole access-scoping filter.
	Author string `json:"author"`
	// Shared marks the note as shared; ShareCode is only set while Shared.
	Shared    bool      `json:"shared"`
	ShareCode string    `json:"shareCode,omitempty"`
	SharedAt  time.Time `json:"sharedAt"`
	// Encrypted indicates Title and Body are ciphertext under the
	// author's encryption envelope. A note is never mixed: either both
	// fields are plaintext or both are ciphertext.
	Encrypted bool `json:"encrypted"`
}

// ShareUpdate is the merge-patch applied to a note when it is shared.
// Unlike a save it touches only the share fields, never title or body.
type ShareUpdate struct {
	Shared    bool      `json:"shared"`
	ShareCode string    `json:"shareCode"`
	SharedAt  time.Time `json:"sharedAt"`
}

// Settings holds per-user display preferences persisted with the profile.
type Settings struct {
	BgColor      string `json:"bgColor,omitempty"`
	FontColor    string `json:"fontColor,omitempty"`
	FontStyle    string `json:"fontStyle,omitempty"`
	TextToSpeech bool   `json:"textToSpeech"`
}

// Profile is the per-identity record returned to the client on login.
// EncryptionSalt and KeyVerifier are present only when the identity set up
// an encryption envelope at registration; the derived key itself is never
// persisted anywhere.
type Profile struct {
	Email          string   `json:"email"`
	EncryptionSalt []byte   `json:"encryptionSalt,omitempty"`
	KeyVerifier    []byte   `json:"keyVerifier,omitempty"`
	Settings       Settings `json:"settings"`
}

// User represents an application user row on the server.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the login name and the author value on the user's notes.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// EncryptionSalt and KeyVerifier belong to the client-side encryption
	// envelope; the server stores them opaquely.
	EncryptionSalt []byte
	KeyVerifier    []byte
	Settings       Settings
	CreatedAt      time.Time
}

// Profile projects the user row into the client-facing profile.
func (u *User) Profile() Profile {
	return Profile{
		Email:          u.Email,
		EncryptionSalt: u.EncryptionSalt,
		KeyVerifier:    u.KeyVerifier,
		Settings:       u.Settings,
	}
}
