package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
)

func TestGetCookieSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetCookieSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetCookieSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSecretsAreIndependent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cookie, _ := GetCookieSecret(ctx, database)
	token, err := GetTokenSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if cookie == token {
		t.Error("cookie and token secrets must differ")
	}
}
