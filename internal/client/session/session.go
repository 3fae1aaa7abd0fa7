// Package session holds the per-sign-in application state. A Session is
// created after successful authentication (and envelope unlock, for
// encrypted accounts) and torn down at sign-out; nothing in it survives the
// process.
package session

import (
	"github.com/avolkov/chalkboard/internal/client/envelope"
	"github.com/avolkov/chalkboard/internal/models"
)

// Session is the signed-in identity plus its in-memory envelope key.
type Session struct {
	// Email identifies the signed-in user and is the author value stamped
	// on every note the session creates.
	Email string

	// Settings are the profile preferences loaded at login.
	Settings models.Settings

	// Envelope is nil for accounts that declined encryption at setup.
	Envelope *envelope.Envelope
}

// New builds a session for a signed-in identity.
func New(email string, settings models.Settings, env *envelope.Envelope) *Session {
	return &Session{Email: email, Settings: settings, Envelope: env}
}

// Encrypted reports whether note fields must pass through the envelope.
func (s *Session) Encrypted() bool {
	return s != nil && s.Envelope != nil
}
