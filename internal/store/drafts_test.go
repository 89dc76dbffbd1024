package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestSaveAndGetDraft(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	createTestSession(t, database, "sid-1", time.Now().UTC().Add(time.Hour))

	d := &Draft{Kind: model.ItemTypeLost, Step: 2, Item: model.ItemDraft{Type: model.ItemTypeLost, Title: "Red Backpack", Category: "bags"}}
	if err := SaveDraft(ctx, database, "sid-1", d); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	got, err := GetDraft(ctx, database, "sid-1", model.ItemTypeLost)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if got == nil || got.Step != 2 || got.Item.Title != "Red Backpack" {
		t.Fatalf("unexpected draft: %+v", got)
	}

	// Upsert moves the step forward.
	d.Step = 3
	d.Item.Description = "A red backpack with a laptop inside"
	if err := SaveDraft(ctx, database, "sid-1", d); err != nil {
		t.Fatalf("SaveDraft update: %v", err)
	}
	got, _ = GetDraft(ctx, database, "sid-1", model.ItemTypeLost)
	if got.Step != 3 || got.Item.Description == "" {
		t.Errorf("draft not updated: %+v", got)
	}

	if other, _ := GetDraft(ctx, database, "sid-1", model.ItemTypeFound); other != nil {
		t.Error("found draft should be independent of lost draft")
	}
}

func TestDraftStepBounds(t *testing.T) {
	database := db.NewTestDB(t)
	createTestSession(t, database, "sid-1", time.Now().UTC().Add(time.Hour))

	err := SaveDraft(context.Background(), database, "sid-1", &Draft{Kind: model.ItemTypeLost, Step: 5})
	if err == nil {
		t.Error("expected step 5 to be rejected")
	}
}

func TestDeleteDraft(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	createTestSession(t, database, "sid-1", time.Now().UTC().Add(time.Hour))

	SaveDraft(ctx, database, "sid-1", &Draft{Kind: model.ItemTypeFound, Step: 1})
	if err := DeleteDraft(ctx, database, "sid-1", model.ItemTypeFound); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}
	if d, _ := GetDraft(ctx, database, "sid-1", model.ItemTypeFound); d != nil {
		t.Error("draft still present")
	}
}
