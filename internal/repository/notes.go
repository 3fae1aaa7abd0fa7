package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/chalkboard/internal/models"
	"github.com/lib/pq"
)

// PostgresNotesRepository implements note persistence against a PostgreSQL
// database. Every operation is scoped to the owning author.
type PostgresNotesRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresNotesRepository creates a new PostgresNotesRepository using the
// provided *sql.DB.
func NewPostgresNotesRepository(db *sql.DB) *PostgresNotesRepository {
	return &PostgresNotesRepository{DB: db}
}

const noteColumns = `id, author, title, body, created_at, updated_at, shared, share_code, shared_at, encrypted`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	var (
		n         models.Note
		shareCode sql.NullString
		sharedAt  sql.NullTime
	)
	err := row.Scan(&n.ID, &n.Author, &n.Title, &n.Body, &n.CreatedAt,
		&n.UpdatedAt, &n.Shared, &shareCode, &sharedAt, &n.Encrypted)
	if err != nil {
		return nil, err
	}
	n.ShareCode = shareCode.String
	n.SharedAt = sharedAt.Time
	return &n, nil
}

// ListByAuthor fetches all notes belonging to the author, most recently
// updated first.
func (r *PostgresNotesRepository) ListByAuthor(ctx context.Context, author string) ([]models.Note, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes WHERE author = $1 ORDER BY updated_at DESC
	`, author)
	if err != nil {
		return nil, fmt.Errorf("ListByAuthor: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// GetByID retrieves a single note by ID for the given author.
// Returns ErrNotFound when the note is absent or owned by someone else.
func (r *PostgresNotesRepository) GetByID(ctx context.Context, author, id string) (*models.Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx, `
		SELECT `+noteColumns+` FROM notes WHERE author = $1 AND id = $2
	`, author, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return n, nil
}

// Put writes the note with full-replace semantics: an existing row with the
// same ID is overwritten field by field, never merged. The author guard on
// the conflict branch keeps one user from replacing another's note.
func (r *PostgresNotesRepository) Put(ctx context.Context, n *models.Note) error {
	shareCode := sql.NullString{String: n.ShareCode, Valid: n.ShareCode != ""}
	sharedAt := sql.NullTime{Time: n.SharedAt, Valid: !n.SharedAt.IsZero()}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO notes (id, author, title, body, created_at, updated_at, shared, share_code, shared_at, encrypted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			shared = EXCLUDED.shared,
			share_code = EXCLUDED.share_code,
			shared_at = EXCLUDED.shared_at,
			encrypted = EXCLUDED.encrypted
		WHERE notes.author = EXCLUDED.author
	`, n.ID, n.Author, n.Title, n.Body, n.CreatedAt, n.UpdatedAt, n.Shared, shareCode, sharedAt, n.Encrypted)
	if err != nil {
		return fmt.Errorf("Put: %w", err)
	}
	return nil
}

// UpdateShare merges only the share fields into an existing note.
// Returns ErrNotFound when the note does not exist for the author.
func (r *PostgresNotesRepository) UpdateShare(ctx context.Context, author, id string, upd models.ShareUpdate) error {
	shareCode := sql.NullString{String: upd.ShareCode, Valid: upd.ShareCode != ""}
	sharedAt := sql.NullTime{Time: upd.SharedAt, Valid: !upd.SharedAt.IsZero()}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE notes SET shared = $3, share_code = $4, shared_at = $5
		WHERE author = $1 AND id = $2
	`, author, id, upd.Shared, shareCode, sharedAt)
	if err != nil {
		return fmt.Errorf("UpdateShare: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single note. Returns ErrNotFound when nothing was
// deleted, so a retried delete reports a not-found condition instead of
// silently succeeding.
func (r *PostgresNotesRepository) Delete(ctx context.Context, author, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM notes WHERE author = $1 AND id = $2`, author, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBatch removes exactly the given set of notes in one transaction.
// If any of the ids does not resolve to a note owned by the author the whole
// batch is rolled back, leaving zero of them deleted.
func (r *PostgresNotesRepository) DeleteBatch(ctx context.Context, author string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM notes WHERE author = $1 AND id = ANY($2)
	`, author, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("batch delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows != int64(len(ids)) {
		return fmt.Errorf("batch delete: %w: %d of %d notes", ErrNotFound, int64(len(ids))-rows, len(ids))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteAll removes every note belonging to the author in one transaction
// and reports how many were deleted.
func (r *PostgresNotesRepository) DeleteAll(ctx context.Context, author string) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE author = $1`, author)
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}
	rows, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return rows, nil
}
