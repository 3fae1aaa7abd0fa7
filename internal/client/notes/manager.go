// Package notes implements the note lifecycle: creating, saving, deleting,
// listing and displaying the signed-in identity's notes, including the bulk
// destructive operations and the share flow. All persistence goes through
// the Store contract; all presentation goes through the View contract, so
// the lifecycle logic stays free of any rendering concern.
package notes

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/avolkov/chalkboard/internal/client/selection"
	"github.com/avolkov/chalkboard/internal/client/session"
	"github.com/avolkov/chalkboard/internal/models"
	"go.uber.org/zap"
)

// Precondition errors: reported immediately, no store call attempted.
var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrNoCurrentNote   = errors.New("no note selected")
	ErrNothingSelected = errors.New("no notes selected")
	ErrNotShared       = errors.New("note is not shared")
	ErrNoEncryptionKey = errors.New("note is encrypted and no key is available")
)

// Store is the document-store contract the manager persists through.
type Store interface {
	List(ctx context.Context) ([]models.Note, error)
	Get(ctx context.Context, id string) (*models.Note, error)
	Put(ctx context.Context, n *models.Note) error
	Share(ctx context.Context, id string, upd models.ShareUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, ids []string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// ListItem is one selectable row of the rendered note list.
type ListItem struct {
	ID       string
	Title    string
	Selected bool
}

// View is the presentation collaborator: it receives state and renders it,
// never the other way around.
type View interface {
	// DisplayNote populates the editor fields and the read-only metadata line.
	DisplayNote(title, body, metadata string)
	// ClearDisplay resets the editor and returns the view to its empty state.
	ClearDisplay()
	// RenderList redraws the note list; bulkVisible toggles the bulk-action
	// control group.
	RenderList(items []ListItem, bulkVisible bool)
}

// Confirmer gates destructive operations behind explicit interactive
// acknowledgment. Declining aborts with no side effects.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Manager owns the in-memory current note and the note list for one
// signed-in session.
type Manager struct {
	store     Store
	sess      *session.Session
	view      View
	confirm   Confirmer
	selection *selection.Tracker
	log       *zap.Logger

	current *models.Note
	notes   []models.Note
}

// NewManager builds a Manager for a signed-in session. It lives exactly as
// long as the session does.
func NewManager(store Store, sess *session.Session, view View, confirm Confirmer, sel *selection.Tracker, log *zap.Logger) *Manager {
	return &Manager{
		store:     store,
		sess:      sess,
		view:      view,
		confirm:   confirm,
		selection: sel,
		log:       log,
	}
}

// Current returns the in-memory current note, possibly nil. Its fields are
// exactly what the store holds: ciphertext for encrypted accounts.
func (m *Manager) Current() *models.Note {
	return m.current
}

// Notes returns the last loaded list in store order.
func (m *Manager) Notes() []models.Note {
	return m.notes
}

// newNoteID returns a fresh time-based identifier.
func newNoteID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// newShareCode returns a short random token.
func newShareCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share code: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create produces a new blank note, makes it current and shows it for
// editing. Nothing is written to the store until the first save.
func (m *Manager) Create() (*models.Note, error) {
	if m.sess == nil {
		return nil, ErrNotSignedIn
	}
	now := time.Now()
	m.current = &models.Note{
		ID:        newNoteID(),
		CreatedAt: now,
		UpdatedAt: now,
		Author:    m.sess.Email,
	}
	m.view.DisplayNote("", "", m.metadata(m.current))
	return m.current, nil
}

// Save persists the current note with the given editor fields, overwriting
// any prior version under the same id. An empty title becomes "Untitled";
// createdAt is preserved and updatedAt refreshed. With an active envelope
// both fields are stored as ciphertext. On success the current note becomes
// the just-written record and the list is reloaded; on failure no local
// state is mutated.
func (m *Manager) Save(ctx context.Context, title, body string) error {
	if m.sess == nil {
		return ErrNotSignedIn
	}
	if m.current == nil {
		return ErrNoCurrentNote
	}

	if title == "" {
		title = "Untitled"
	}

	record := models.Note{
		ID:        m.current.ID,
		Title:     title,
		Body:      body,
		CreatedAt: m.current.CreatedAt,
		UpdatedAt: time.Now(),
		Author:    m.sess.Email,
		Shared:    m.current.Shared,
		ShareCode: m.current.ShareCode,
		SharedAt:  m.current.SharedAt,
	}

	if m.sess.Encrypted() {
		encTitle, err := m.sess.Envelope.EncryptField(title)
		if err != nil {
			return fmt.Errorf("encrypt title: %w", err)
		}
		encBody, err := m.sess.Envelope.EncryptField(body)
		if err != nil {
			return fmt.Errorf("encrypt body: %w", err)
		}
		record.Title, record.Body = encTitle, encBody
		record.Encrypted = true
	}

	if err := m.store.Put(ctx, &record); err != nil {
		m.log.Error("failed to save note", zap.String("id", record.ID), zap.Error(err))
		return fmt.Errorf("save note: %w", err)
	}

	m.current = &record
	return m.List(ctx)
}

// Delete removes the current note after interactive confirmation. Declining
// aborts with no side effects. If the store deletion fails no local state
// is cleared.
func (m *Manager) Delete(ctx context.Context) error {
	if m.current == nil || m.current.ID == "" {
		return ErrNoCurrentNote
	}
	if !m.confirm.Confirm("Are you sure you want to delete this note? This action cannot be undone.") {
		return nil
	}

	if err := m.store.Delete(ctx, m.current.ID); err != nil {
		m.log.Error("failed to delete note", zap.String("id", m.current.ID), zap.Error(err))
		return fmt.Errorf("delete note: %w", err)
	}

	m.current = nil
	m.view.ClearDisplay()
	return m.List(ctx)
}

// List reloads the identity's notes from the store, ordered by updatedAt
// descending, and re-renders the list. Selection highlighting is re-derived
// from the tracked set, so a selection survives a reload when the same ids
// reappear.
func (m *Manager) List(ctx context.Context) error {
	if m.sess == nil {
		return ErrNotSignedIn
	}

	notes, err := m.store.List(ctx)
	if err != nil {
		m.log.Error("failed to load notes", zap.Error(err))
		return fmt.Errorf("load notes: %w", err)
	}
	m.notes = notes

	items := make([]ListItem, 0, len(notes))
	for _, n := range notes {
		title := n.Title
		if n.Encrypted {
			// Never show ciphertext in the list: without a key (or on a
			// failed decryption) the row falls back to the Untitled label.
			title = ""
			if m.sess.Encrypted() {
				if t, err := m.sess.Envelope.DecryptField(n.Title); err == nil {
					title = t
				}
			}
		}
		if title == "" {
			title = "Untitled"
		}
		items = append(items, ListItem{
			ID:       n.ID,
			Title:    title,
			Selected: m.selection.Selected(n.ID),
		})
	}
	m.view.RenderList(items, len(items) > 0)
	return nil
}

// Display makes the given record current and shows it. Encrypted fields are
// decrypted first; a decryption failure clears the editor instead of
// showing garbled text and surfaces a distinguishable error.
func (m *Manager) Display(n models.Note) error {
	title, body, err := m.plaintextOf(n)
	if err != nil {
		m.view.ClearDisplay()
		m.current = nil
		return err
	}

	m.current = &n
	m.view.DisplayNote(title, body, m.metadata(&n))
	return nil
}

// Open fetches one note from the last loaded list by id and displays it.
func (m *Manager) Open(id string) error {
	for _, n := range m.notes {
		if n.ID == id {
			return m.Display(n)
		}
	}
	return fmt.Errorf("note %s: %w", id, ErrNoCurrentNote)
}

// ClearDisplay resets the editor view and drops the current note.
func (m *Manager) ClearDisplay() {
	m.current = nil
	m.view.ClearDisplay()
}

// DeleteSelected removes exactly the selected notes as one atomic batch,
// after a confirmation stating the count. On success the selection is
// cleared and the list reloaded; on failure a single aggregated error is
// surfaced and nothing is cleaned up locally.
func (m *Manager) DeleteSelected(ctx context.Context) error {
	if m.selection.Count() == 0 {
		return ErrNothingSelected
	}
	prompt := fmt.Sprintf("Are you sure you want to delete %d selected note(s)?", m.selection.Count())
	if !m.confirm.Confirm(prompt) {
		return nil
	}

	ids := m.selection.IDs()
	if err := m.store.DeleteBatch(ctx, ids); err != nil {
		m.log.Error("failed to delete selected notes", zap.Int("count", len(ids)), zap.Error(err))
		return fmt.Errorf("delete selected notes: %w", err)
	}

	m.selection.Clear()
	m.dropCurrentIfGone(ids)
	return m.List(ctx)
}

// DeleteAll removes every note of the identity after an unqualified
// warning. The batch is all-or-nothing at the store level.
func (m *Manager) DeleteAll(ctx context.Context) error {
	if m.sess == nil {
		return ErrNotSignedIn
	}
	if !m.confirm.Confirm("Are you sure you want to delete ALL notes? This action cannot be undone!") {
		return nil
	}

	if _, err := m.store.DeleteAll(ctx); err != nil {
		m.log.Error("failed to delete all notes", zap.Error(err))
		return fmt.Errorf("delete all notes: %w", err)
	}

	m.selection.Clear()
	m.current = nil
	m.view.ClearDisplay()
	return m.List(ctx)
}

// Share generates a short random share token and merges it into the stored
// record, leaving title and body untouched. On success the share fields are
// mirrored into the in-memory current note.
func (m *Manager) Share(ctx context.Context) (string, error) {
	if m.current == nil || m.current.ID == "" {
		return "", ErrNoCurrentNote
	}

	code, err := newShareCode()
	if err != nil {
		return "", err
	}
	upd := models.ShareUpdate{Shared: true, ShareCode: code, SharedAt: time.Now()}

	if err := m.store.Share(ctx, m.current.ID, upd); err != nil {
		m.log.Error("failed to share note", zap.String("id", m.current.ID), zap.Error(err))
		return "", fmt.Errorf("share note: %w", err)
	}

	m.current.Shared = upd.Shared
	m.current.ShareCode = upd.ShareCode
	m.current.SharedAt = upd.SharedAt
	return code, nil
}

// SyncShared re-fetches the current shared note from the store and
// redisplays it, reporting an error when the record no longer exists.
func (m *Manager) SyncShared(ctx context.Context) error {
	if m.current == nil || m.current.ID == "" {
		return ErrNoCurrentNote
	}
	if !m.current.Shared {
		return ErrNotShared
	}

	n, err := m.store.Get(ctx, m.current.ID)
	if err != nil {
		m.log.Error("failed to sync shared note", zap.String("id", m.current.ID), zap.Error(err))
		return fmt.Errorf("sync shared note: %w", err)
	}
	return m.Display(*n)
}

// CurrentPlaintext returns the decrypted title and body of the current note
// for export and narration.
func (m *Manager) CurrentPlaintext() (title, body string, err error) {
	if m.current == nil {
		return "", "", ErrNoCurrentNote
	}
	return m.plaintextOf(*m.current)
}

// SelectedPlaintext re-queries the store and returns the selected notes in
// list arrival order, decrypted for narration.
func (m *Manager) SelectedPlaintext(ctx context.Context) ([]models.Note, error) {
	if m.selection.Count() == 0 {
		return nil, ErrNothingSelected
	}

	notes, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}

	var out []models.Note
	for _, n := range notes {
		if !m.selection.Selected(n.ID) {
			continue
		}
		title, body, err := m.plaintextOf(n)
		if err != nil {
			return nil, err
		}
		n.Title, n.Body = title, body
		n.Encrypted = false
		out = append(out, n)
	}
	return out, nil
}

// Reset drops all process-local state at sign-out.
func (m *Manager) Reset() {
	m.current = nil
	m.notes = nil
	m.selection.Clear()
	m.view.ClearDisplay()
}

func (m *Manager) plaintextOf(n models.Note) (title, body string, err error) {
	if !n.Encrypted {
		return n.Title, n.Body, nil
	}
	if !m.sess.Encrypted() {
		return "", "", ErrNoEncryptionKey
	}
	title, err = m.sess.Envelope.DecryptField(n.Title)
	if err != nil {
		return "", "", fmt.Errorf("decrypt title: %w", err)
	}
	body, err = m.sess.Envelope.DecryptField(n.Body)
	if err != nil {
		return "", "", fmt.Errorf("decrypt body: %w", err)
	}
	return title, body, nil
}

// dropCurrentIfGone clears the editor when the current note was part of a
// completed batch delete.
func (m *Manager) dropCurrentIfGone(deleted []string) {
	if m.current == nil {
		return
	}
	for _, id := range deleted {
		if id == m.current.ID {
			m.current = nil
			m.view.ClearDisplay()
			return
		}
	}
}

// metadata renders the read-only metadata line shown under the editor.
func (m *Manager) metadata(n *models.Note) string {
	return fmt.Sprintf("Created: %s · Updated: %s · Author: %s",
		n.CreatedAt.Format(time.DateTime),
		n.UpdatedAt.Format(time.DateTime),
		n.Author,
	)
}
