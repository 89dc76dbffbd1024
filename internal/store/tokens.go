package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeSession records the cookie id as revoked and drops the session with
// its drafts, in one transaction.
func RevokeSession(ctx context.Context, db *sql.DB, id string, expiresAt time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning revoke: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`, id, expiresAt,
	); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_drafts WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("deleting session drafts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return tx.Commit()
}

// IsSessionRevoked checks if a cookie id has been revoked.
func IsSessionRevoked(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking session revocation: %w", err)
	}
	return count > 0, nil
}

// PurgeExpired removes expired sessions, their drafts and revocations. It
// returns the number of sessions removed.
func PurgeExpired(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	if _, err := db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now); err != nil {
		return 0, fmt.Errorf("purging revocations: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`DELETE FROM session_drafts WHERE session_id IN (SELECT id FROM sessions WHERE expires_at < ?)`, now,
	); err != nil {
		return 0, fmt.Errorf("purging drafts: %w", err)
	}
	res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	return res.RowsAffected()
}
