package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avolkov/chalkboard/internal/models"
	"github.com/lib/pq"
)

func setupNotesMock(t *testing.T) (*PostgresNotesRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresNotesRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

var noteCols = []string{"id", "author", "title", "body", "created_at", "updated_at", "shared", "share_code", "shared_at", "encrypted"}

func TestListByAuthor(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM notes WHERE author = $1 ORDER BY updated_at DESC`)).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow("2", "user@example.com", "Second", "b", now, now, false, nil, nil, false).
			AddRow("1", "user@example.com", "First", "a", now, now, true, "ab12cd34", now, false))

	notes, err := repo.ListByAuthor(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notes; want 2", len(notes))
	}
	if notes[0].ID != "2" || notes[1].ID != "1" {
		t.Errorf("order = [%s %s]; want [2 1]", notes[0].ID, notes[1].ID)
	}
	if notes[1].ShareCode != "ab12cd34" {
		t.Errorf("ShareCode = %q; want ab12cd34", notes[1].ShareCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM notes WHERE author = $1 AND id = $2`)).
		WithArgs("user@example.com", "42").
		WillReturnRows(sqlmock.NewRows(noteCols))

	_, err := repo.GetByID(context.Background(), "user@example.com", "42")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPut_Upsert(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	now := time.Now()
	n := &models.Note{
		ID:        "1",
		Author:    "user@example.com",
		Title:     "Title",
		Body:      "body",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notes (id, author, title, body, created_at, updated_at, shared, share_code, shared_at, encrypted)`)).
		WithArgs("1", "user@example.com", "Title", "body", now, now, false, sqlmock.AnyArg(), sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Put(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateShare_NotFound(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE notes SET shared = $3, share_code = $4, shared_at = $5`)).
		WithArgs("user@example.com", "42", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateShare(context.Background(), "user@example.com", "42",
		models.ShareUpdate{Shared: true, ShareCode: "ab12cd34", SharedAt: time.Now()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE author = $1 AND id = $2`)).
		WithArgs("user@example.com", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "user@example.com", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDelete_AlreadyGone(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE author = $1 AND id = $2`)).
		WithArgs("user@example.com", "1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user@example.com", "1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v; want ErrNotFound for a repeated delete", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteBatch_Success(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	ids := []string{"1", "2", "3"}
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE author = $1 AND id = ANY($2)`)).
		WithArgs("user@example.com", pq.Array(ids)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	if err := repo.DeleteBatch(context.Background(), "user@example.com", ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteBatch_PartialMatchRollsBack(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	ids := []string{"1", "2", "3"}
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE author = $1 AND id = ANY($2)`)).
		WithArgs("user@example.com", pq.Array(ids)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	err := repo.DeleteBatch(context.Background(), "user@example.com", ids)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v; want ErrNotFound when the batch is incomplete", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteBatch_EmptyIsNoop(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	if err := repo.DeleteBatch(context.Background(), "user@example.com", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	repo, mock, cleanup := setupNotesMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE author = $1`)).
		WithArgs("user@example.com").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	count, err := repo.DeleteAll(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d; want 5", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
