package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestRevokeAndCheckSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	createTestSession(t, database, "sid-1", now.Add(time.Hour))

	revoked, err := IsSessionRevoked(ctx, database, "sid-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked: %v", err)
	}
	if revoked {
		t.Error("expected session not to be revoked")
	}

	if err := RevokeSession(ctx, database, "sid-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}

	revoked, err = IsSessionRevoked(ctx, database, "sid-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected session to be revoked")
	}

	rec, err := GetSession(ctx, database, "sid-1", now)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if rec != nil {
		t.Error("revoked session row should be gone")
	}

	revoked, _ = IsSessionRevoked(ctx, database, "sid-2")
	if revoked {
		t.Error("expected different session not to be revoked")
	}
}

func TestRevokeSessionIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	exp := time.Now().UTC().Add(time.Hour)

	if err := RevokeSession(ctx, database, "sid-1", exp); err != nil {
		t.Fatalf("first RevokeSession: %v", err)
	}
	if err := RevokeSession(ctx, database, "sid-1", exp); err != nil {
		t.Fatalf("second RevokeSession: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	createTestSession(t, database, "old", now.Add(-time.Minute))
	createTestSession(t, database, "live", now.Add(time.Hour))
	SaveDraft(ctx, database, "old", &Draft{Kind: model.ItemTypeLost, Step: 1})
	RevokeSession(ctx, database, "gone", now.Add(-time.Minute))

	n, err := PurgeExpired(ctx, database, now)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged session, got %d", n)
	}

	count, _ := CountSessions(ctx, database, now)
	if count != 1 {
		t.Errorf("expected 1 live session, got %d", count)
	}
	if d, _ := GetDraft(ctx, database, "old", model.ItemTypeLost); d != nil {
		t.Error("draft of purged session survived")
	}
	if revoked, _ := IsSessionRevoked(ctx, database, "gone"); revoked {
		t.Error("expired revocation survived")
	}
}
