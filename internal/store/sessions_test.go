package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func createTestSession(t *testing.T, database *sql.DB, id string, expiresAt time.Time) {
	t.Helper()
	err := CreateSession(context.Background(), database, &SessionRecord{
		ID:          id,
		User:        model.User{ID: "u1", FullName: "Test User", Email: "test@example.com"},
		SealedToken: "sealed",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
}

func TestCreateAndGetSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	createTestSession(t, database, "sid-1", now.Add(time.Hour))

	rec, err := GetSession(ctx, database, "sid-1", now)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if rec == nil {
		t.Fatal("expected session")
	}
	if rec.User.ID != "u1" || rec.User.FullName != "Test User" {
		t.Errorf("unexpected user: %+v", rec.User)
	}
	if rec.SealedToken != "sealed" {
		t.Errorf("expected sealed token, got %q", rec.SealedToken)
	}
}

func TestGetSessionExpired(t *testing.T) {
	database := db.NewTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	createTestSession(t, database, "sid-1", now.Add(-time.Second))

	rec, err := GetSession(context.Background(), database, "sid-1", now)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if rec != nil {
		t.Error("expected expired session to be hidden")
	}
}

func TestGetSessionMissing(t *testing.T) {
	database := db.NewTestDB(t)

	rec, err := GetSession(context.Background(), database, "nope", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if rec != nil {
		t.Error("expected nil for missing session")
	}
}

func TestUpdateSessionUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	createTestSession(t, database, "sid-1", now.Add(time.Hour))

	err := UpdateSessionUser(ctx, database, "sid-1", model.User{ID: "u1", FullName: "Renamed", IsAdmin: true})
	if err != nil {
		t.Fatalf("UpdateSessionUser: %v", err)
	}

	rec, _ := GetSession(ctx, database, "sid-1", now)
	if rec.User.FullName != "Renamed" || rec.User.Role() != model.RoleAdmin {
		t.Errorf("user not updated: %+v", rec.User)
	}
}

func TestDeleteSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	createTestSession(t, database, "sid-1", now.Add(time.Hour))

	if err := DeleteSession(ctx, database, "sid-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if rec, _ := GetSession(ctx, database, "sid-1", now); rec != nil {
		t.Error("session still present")
	}
	if revoked, _ := IsSessionRevoked(ctx, database, "sid-1"); revoked {
		t.Error("plain delete must not revoke")
	}
}
