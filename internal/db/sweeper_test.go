package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

func TestRevokeStaleShares(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer mockDB.Close()

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(`SET shared = false, share_code = NULL, shared_at = NULL`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	revokeStaleShares(context.Background(), mockDB, cutoff, zap.NewNop())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRevokeStaleShares_QueryErrorIsLoggedNotFatal(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer mockDB.Close()

	cutoff := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`SET shared = false`)).
		WithArgs(cutoff).
		WillReturnError(errors.New("connection reset"))

	// Must not panic; the sweeper retries on the next tick.
	revokeStaleShares(context.Background(), mockDB, cutoff, zap.NewNop())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
