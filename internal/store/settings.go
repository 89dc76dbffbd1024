package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// GetSecret retrieves a named secret from the settings table, generating and
// storing a random 32-byte value on first use. INSERT OR IGNORE followed by
// a re-SELECT keeps concurrent first starts from disagreeing.
func GetSecret(ctx context.Context, db *sql.DB, key string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating %s: %w", key, err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, hex.EncodeToString(buf),
	)
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}

	var secret string
	err = db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}
	return secret, nil
}

// GetCookieSecret returns the key that signs session cookies.
func GetCookieSecret(ctx context.Context, db *sql.DB) (string, error) {
	return GetSecret(ctx, db, "cookie_secret")
}

// GetTokenSecret returns the key material that seals backend tokens at rest.
func GetTokenSecret(ctx context.Context, db *sql.DB) (string, error) {
	return GetSecret(ctx, db, "token_secret")
}
