package service

import (
	"context"
	"errors"

	"github.com/avolkov/chalkboard/internal/models"
)

// ErrAuthorMismatch is returned when a write names an author other than the
// authenticated identity.
var ErrAuthorMismatch = errors.New("note author does not match identity")

// NotesRepository defines the persistence operations needed by the
// NotesService.
type NotesRepository interface {
	// ListByAuthor retrieves all notes belonging to the author, most
	// recently updated first.
	ListByAuthor(ctx context.Context, author string) ([]models.Note, error)
	// GetByID fetches a single note by ID for the given author.
	GetByID(ctx context.Context, author, id string) (*models.Note, error)
	// Put writes a note with full-replace semantics.
	Put(ctx context.Context, n *models.Note) error
	// UpdateShare merges only the share fields into an existing note.
	UpdateShare(ctx context.Context, author, id string, upd models.ShareUpdate) error
	// Delete removes a single note.
	Delete(ctx context.Context, author, id string) error
	// DeleteBatch removes the given notes atomically: all or none.
	DeleteBatch(ctx context.Context, author string, ids []string) error
	// DeleteAll removes every note of the author atomically.
	DeleteAll(ctx context.Context, author string) (int64, error)
}

// NotesService implements the document-store operations for notes, scoping
// every call to the authenticated author.
type NotesService struct {
	repo NotesRepository
}

// NewNotesService constructs a NotesService with the provided repository.
func NewNotesService(repo NotesRepository) *NotesService {
	return &NotesService{repo: repo}
}

// List returns the author's notes ordered by updatedAt descending.
func (s *NotesService) List(ctx context.Context, author string) ([]models.Note, error) {
	return s.repo.ListByAuthor(ctx, author)
}

// Get fetches one note by ID.
func (s *NotesService) Get(ctx context.Context, author, id string) (*models.Note, error) {
	return s.repo.GetByID(ctx, author, id)
}

// Put stores the note, overwriting any prior version under the same ID.
// The note's author must match the authenticated identity.
func (s *NotesService) Put(ctx context.Context, author string, n *models.Note) error {
	if n.Author != author {
		return ErrAuthorMismatch
	}
	return s.repo.Put(ctx, n)
}

// Share merges the share fields into the stored note.
func (s *NotesService) Share(ctx context.Context, author, id string, upd models.ShareUpdate) error {
	return s.repo.UpdateShare(ctx, author, id, upd)
}

// Delete removes a single note.
func (s *NotesService) Delete(ctx context.Context, author, id string) error {
	return s.repo.Delete(ctx, author, id)
}

// DeleteBatch removes exactly the given notes or none of them.
func (s *NotesService) DeleteBatch(ctx context.Context, author string, ids []string) error {
	return s.repo.DeleteBatch(ctx, author, ids)
}

// DeleteAll removes every note of the author.
func (s *NotesService) DeleteAll(ctx context.Context, author string) (int64, error) {
	return s.repo.DeleteAll(ctx, author)
}
