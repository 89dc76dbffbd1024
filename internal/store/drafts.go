package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// Draft is a post wizard in progress.
type Draft struct {
	Kind string
	Step int
	Item model.ItemDraft
}

// SaveDraft upserts the wizard draft of a session.
func SaveDraft(ctx context.Context, db *sql.DB, sessionID string, d *Draft) error {
	data, err := json.Marshal(d.Item)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO session_drafts (session_id, kind, step, data, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (session_id, kind) DO UPDATE
		 SET step = excluded.step, data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		sessionID, d.Kind, d.Step, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// GetDraft returns the draft of the given kind, or nil if none exists.
func GetDraft(ctx context.Context, db *sql.DB, sessionID, kind string) (*Draft, error) {
	d := &Draft{Kind: kind}
	var data string
	err := db.QueryRowContext(ctx,
		`SELECT step, data FROM session_drafts WHERE session_id = ? AND kind = ?`,
		sessionID, kind,
	).Scan(&d.Step, &data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting draft: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &d.Item); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return d, nil
}

// DeleteDraft discards a wizard draft.
func DeleteDraft(ctx context.Context, db *sql.DB, sessionID, kind string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM session_drafts WHERE session_id = ? AND kind = ?`, sessionID, kind,
	)
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}
