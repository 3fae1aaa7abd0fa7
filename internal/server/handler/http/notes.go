package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/chalkboard/internal/middleware"
	"github.com/avolkov/chalkboard/internal/models"
	"github.com/avolkov/chalkboard/internal/repository"
	"github.com/avolkov/chalkboard/internal/service"
	"github.com/go-chi/chi/v5"
)

// NotesService defines the interface for document-store operations required
// by the NotesHandler.
type NotesService interface {
	// List returns the author's notes ordered by updatedAt descending.
	List(ctx context.Context, author string) ([]models.Note, error)
	// Get fetches a single note by ID.
	Get(ctx context.Context, author, id string) (*models.Note, error)
	// Put stores a note with full-replace semantics.
	Put(ctx context.Context, author string, n *models.Note) error
	// Share merges the share fields into a stored note.
	Share(ctx context.Context, author, id string, upd models.ShareUpdate) error
	// Delete removes one note.
	Delete(ctx context.Context, author, id string) error
	// DeleteBatch removes the given notes atomically.
	DeleteBatch(ctx context.Context, author string, ids []string) error
	// DeleteAll removes every note of the author atomically.
	DeleteAll(ctx context.Context, author string) (int64, error)
}

// NotesHandler handles HTTP requests for note records.
type NotesHandler struct {
	NotesService NotesService
}

// List handles GET /api/notes.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())

	notes, err := h.NotesService.List(r.Context(), author)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(notes)
}

// Get handles GET /api/notes/{id}. Responds 404 when the note does not
// exist for the authenticated author.
func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	note, err := h.NotesService.Get(r.Context(), author, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(note)
}

// Put handles PUT /api/notes/{id}: a full-record replace keyed by the URL
// id. The body's id must match the URL and the author must match the
// authenticated identity.
func (h *NotesHandler) Put(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var note models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil || note.ID == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if note.ID != id {
		http.Error(w, "id mismatch", http.StatusBadRequest)
		return
	}

	if err := h.NotesService.Put(r.Context(), author, &note); err != nil {
		if errors.Is(err, service.ErrAuthorMismatch) {
			http.Error(w, "author mismatch", http.StatusForbidden)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(note)
}

// Share handles PATCH /api/notes/{id}: a merge update restricted to the
// share fields.
func (h *NotesHandler) Share(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var upd models.ShareUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.NotesService.Share(r.Context(), author, id, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/notes/{id}. A second delete of the same id
// responds 404, never 500.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.NotesService.Delete(r.Context(), author, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BatchDeleteRequest is the payload for POST /api/notes/batch-delete.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchDelete handles POST /api/notes/batch-delete. The batch is atomic at
// the store level: either every listed note is deleted or none is.
func (h *NotesHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())

	var req BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.NotesService.DeleteBatch(r.Context(), author, req.IDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/notes: removes every note of the author and
// reports the count.
func (h *NotesHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())

	deleted, err := h.NotesService.DeleteAll(r.Context(), author)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"deleted": deleted})
}
