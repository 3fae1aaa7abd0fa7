package service

import (
	"context"
	"errors"
	"testing"

	"github.com/avolkov/chalkboard/internal/models"
)

type mockNotesRepo struct {
	ListByAuthorFunc func(ctx context.Context, author string) ([]models.Note, error)
	GetByIDFunc      func(ctx context.Context, author, id string) (*models.Note, error)
	PutFunc          func(ctx context.Context, n *models.Note) error
	UpdateShareFunc  func(ctx context.Context, author, id string, upd models.ShareUpdate) error
	DeleteFunc       func(ctx context.Context, author, id string) error
	DeleteBatchFunc  func(ctx context.Context, author string, ids []string) error
	DeleteAllFunc    func(ctx context.Context, author string) (int64, error)
}

func (m *mockNotesRepo) ListByAuthor(ctx context.Context, author string) ([]models.Note, error) {
	return m.ListByAuthorFunc(ctx, author)
}
func (m *mockNotesRepo) GetByID(ctx context.Context, author, id string) (*models.Note, error) {
	return m.GetByIDFunc(ctx, author, id)
}
func (m *mockNotesRepo) Put(ctx context.Context, n *models.Note) error { return m.PutFunc(ctx, n) }
func (m *mockNotesRepo) UpdateShare(ctx context.Context, author, id string, upd models.ShareUpdate) error {
	return m.UpdateShareFunc(ctx, author, id, upd)
}
func (m *mockNotesRepo) Delete(ctx context.Context, author, id string) error {
	return m.DeleteFunc(ctx, author, id)
}
func (m *mockNotesRepo) DeleteBatch(ctx context.Context, author string, ids []string) error {
	return m.DeleteBatchFunc(ctx, author, ids)
}
func (m *mockNotesRepo) DeleteAll(ctx context.Context, author string) (int64, error) {
	return m.DeleteAllFunc(ctx, author)
}

func TestPut_AuthorMismatch(t *testing.T) {
	called := false
	repo := &mockNotesRepo{
		PutFunc: func(ctx context.Context, n *models.Note) error {
			called = true
			return nil
		},
	}
	svc := NewNotesService(repo)

	err := svc.Put(context.Background(), "user@example.com",
		&models.Note{ID: "1", Author: "someone-else@example.com"})
	if !errors.Is(err, ErrAuthorMismatch) {
		t.Errorf("error = %v; want ErrAuthorMismatch", err)
	}
	if called {
		t.Errorf("repository reached despite author mismatch")
	}
}

func TestPut_MatchingAuthor(t *testing.T) {
	var stored *models.Note
	repo := &mockNotesRepo{
		PutFunc: func(ctx context.Context, n *models.Note) error {
			stored = n
			return nil
		},
	}
	svc := NewNotesService(repo)

	n := &models.Note{ID: "1", Author: "user@example.com", Title: "Title"}
	if err := svc.Put(context.Background(), "user@example.com", n); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if stored != n {
		t.Errorf("repository received a different note")
	}
}

func TestList_ScopesToAuthor(t *testing.T) {
	var gotAuthor string
	repo := &mockNotesRepo{
		ListByAuthorFunc: func(ctx context.Context, author string) ([]models.Note, error) {
			gotAuthor = author
			return []models.Note{{ID: "1"}}, nil
		},
	}
	svc := NewNotesService(repo)

	notes, err := svc.List(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if gotAuthor != "user@example.com" {
		t.Errorf("author = %q; want user@example.com", gotAuthor)
	}
	if len(notes) != 1 {
		t.Errorf("got %d notes; want 1", len(notes))
	}
}

func TestDeleteBatch_PropagatesError(t *testing.T) {
	wantErr := errors.New("batch aborted")
	repo := &mockNotesRepo{
		DeleteBatchFunc: func(ctx context.Context, author string, ids []string) error {
			return wantErr
		},
	}
	svc := NewNotesService(repo)

	err := svc.DeleteBatch(context.Background(), "user@example.com", []string{"1", "2"})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v; want %v", err, wantErr)
	}
}
