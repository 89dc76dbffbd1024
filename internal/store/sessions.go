package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// SessionRecord is a persisted portal session. The backend token is kept
// sealed; this package never sees it in clear.
type SessionRecord struct {
	ID          string
	User        model.User
	SealedToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// CreateSession stores a new session.
func CreateSession(ctx context.Context, db *sql.DB, rec *SessionRecord) error {
	userJSON, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, user_json, token_sealed, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.User.ID, string(userJSON), rec.SealedToken, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession returns a live session by id, or nil if it is missing or
// expired at now.
func GetSession(ctx context.Context, db *sql.DB, id string, now time.Time) (*SessionRecord, error) {
	rec := &SessionRecord{ID: id}
	var userJSON string
	err := db.QueryRowContext(ctx,
		`SELECT user_json, token_sealed, created_at, expires_at
		 FROM sessions WHERE id = ? AND expires_at > ?`, id, now,
	).Scan(&userJSON, &rec.SealedToken, &rec.CreatedAt, &rec.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if err := json.Unmarshal([]byte(userJSON), &rec.User); err != nil {
		return nil, fmt.Errorf("decoding session user: %w", err)
	}
	return rec, nil
}

// UpdateSessionUser refreshes the cached profile of a session.
func UpdateSessionUser(ctx context.Context, db *sql.DB, id string, user model.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`UPDATE sessions SET user_id = ?, user_json = ? WHERE id = ?`,
		user.ID, string(userJSON), id,
	)
	if err != nil {
		return fmt.Errorf("updating session user: %w", err)
	}
	return nil
}

// DeleteSession removes a session and its drafts without revoking the cookie.
func DeleteSession(ctx context.Context, db *sql.DB, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM session_drafts WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("deleting session drafts: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CountSessions returns the number of live sessions.
func CountSessions(ctx context.Context, db *sql.DB, now time.Time) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at > ?`, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}
