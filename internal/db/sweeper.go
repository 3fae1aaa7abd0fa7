package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartShareSweeper revokes stale share codes with interval.
// A note shared longer ago than retention goes back to private.
func StartShareSweeper(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				revokeStaleShares(ctx, db, time.Now().Add(-retention), log)
			}
		}
	}()
}

// revokeStaleShares flips every note shared before cutoff back to private.
func revokeStaleShares(ctx context.Context, db *sql.DB, cutoff time.Time, log *zap.Logger) {
	res, err := db.ExecContext(ctx, `
        UPDATE notes
           SET shared = false, share_code = NULL, shared_at = NULL
         WHERE shared = true
           AND shared_at < $1
    `, cutoff)
	if err != nil {
		log.Error("failed to revoke stale share codes", zap.Error(err))
		return
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		log.Info("revoked stale share codes", zap.Int64("revoked", rows))
	}
}
