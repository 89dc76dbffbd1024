package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/client/clienttest"
	"github.com/erazemk/lostfound/internal/model"
)

type staticToken string

func (s staticToken) BearerToken() string { return string(s) }
func (s staticToken) Unauthorized()       {}

func setupConsole(t *testing.T) (*clienttest.Backend, API, *Console) {
	t.Helper()
	b := clienttest.New(t)
	b.AddUser("owner", "Alice Owner", "alice@example.com", "password1", false)
	b.AddUser("claimer", "Bob Claimer", "bob@example.com", "password2", false)
	b.AddUser("root", "Root Admin", "admin@example.com", "password3", true)
	b.AddItem(model.Item{ID: "1", Type: model.ItemTypeLost, UserID: "owner", Title: "Red Backpack", Category: "bags", Location: "Library"})
	b.AddItem(model.Item{ID: "2", Type: model.ItemTypeFound, UserID: "owner", Title: "Keys", Category: "personal", Location: "Gym", Flagged: true})

	api := client.New(b.URL()).As(staticToken("token-root"))
	c := NewConsole()
	if err := c.Load(context.Background(), api, DefaultFilters()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b, api, c
}

func TestLoad(t *testing.T) {
	_, _, c := setupConsole(t)

	v := c.View()
	if v.Stats == nil || v.Stats.TotalItems != 2 || v.Stats.TotalUsers != 3 {
		t.Errorf("unexpected stats: %+v", v.Stats)
	}
	if len(v.Items) != 2 || len(v.Users) != 3 {
		t.Errorf("unexpected rows: %d items, %d users", len(v.Items), len(v.Users))
	}
	if v.Filters.ClaimStatus != model.ClaimStatusPending {
		t.Errorf("claims should default to pending, got %q", v.Filters.ClaimStatus)
	}
}

func TestLoadFlaggedOnly(t *testing.T) {
	_, api, c := setupConsole(t)

	f := DefaultFilters()
	f.FlaggedOnly = true
	if !c.Stale(time.Hour, f) {
		t.Error("changed filters should make the cache stale")
	}
	if err := c.Load(context.Background(), api, f); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v := c.View()
	if len(v.Items) != 1 || v.Items[0].ID != "2" {
		t.Errorf("expected only the flagged item, got %+v", v.Items)
	}
	if c.Stale(time.Hour, f) {
		t.Error("fresh cache reported stale")
	}
}

func TestModeratePatchesAndRefetchesStats(t *testing.T) {
	b, api, c := setupConsole(t)
	ctx := context.Background()
	statsCalls := b.CallCount("GET /admin/stats")

	if err := c.Moderate(ctx, api, "1", model.ModerateArchive, "duplicate"); err != nil {
		t.Fatalf("Moderate: %v", err)
	}

	v := c.View()
	if v.Items[indexOf(v.Items, "1")].Status != model.ItemStatusArchived {
		t.Error("row not patched")
	}
	if v.Stats.ActiveItems != 1 {
		t.Errorf("stats not refetched: %+v", v.Stats)
	}
	if b.CallCount("GET /admin/stats") != statsCalls+1 {
		t.Error("expected one stats refetch")
	}
	if v.Alert != "" {
		t.Errorf("unexpected alert %q", v.Alert)
	}
}

func TestModerateFailureLeavesRows(t *testing.T) {
	b, api, c := setupConsole(t)
	before := c.View()
	b.Fail("POST /admin/items/1/moderate", http.StatusInternalServerError)

	err := c.Moderate(context.Background(), api, "1", model.ModerateArchive, "")
	if !errors.Is(err, client.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}

	after := c.View()
	if after.Items[indexOf(after.Items, "1")].Status != before.Items[indexOf(before.Items, "1")].Status {
		t.Error("failed moderation patched the row")
	}
	if !strings.Contains(after.Alert, "try again") {
		t.Errorf("expected blocking alert, got %q", after.Alert)
	}
	if again := c.View(); again.Alert != "" {
		t.Error("alert should be shown once")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	b, api, c := setupConsole(t)
	ctx := context.Background()

	err := c.Delete(ctx, api, "1", false)
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if b.CallCount("DELETE /admin/items/1") != 0 {
		t.Error("unconfirmed delete reached the backend")
	}
	if _, ok := b.Item("1"); !ok {
		t.Error("item deleted without confirmation")
	}
	if c.View().Alert == "" {
		t.Error("expected a confirmation prompt")
	}

	if err := c.Delete(ctx, api, "1", true); err != nil {
		t.Fatalf("confirmed Delete: %v", err)
	}
	if indexOf(c.View().Items, "1") >= 0 {
		t.Error("deleted row still cached")
	}
	if _, ok := b.Item("1"); ok {
		t.Error("item still in backend")
	}
}

func TestUpdateClaim(t *testing.T) {
	b, api, c := setupConsole(t)
	ctx := context.Background()

	bob := client.New(b.URL()).As(staticToken("token-claimer"))
	claim, err := bob.SubmitClaim(ctx, model.ClaimDraft{ItemID: "1", Message: "That backpack is mine"})
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	c.Load(ctx, api, DefaultFilters())

	if err := c.UpdateClaim(ctx, api, claim.ID, model.ClaimStatusApproved, "verified id"); err != nil {
		t.Fatalf("UpdateClaim: %v", err)
	}
	v := c.View()
	if len(v.Claims) != 1 || v.Claims[0].Status != model.ClaimStatusApproved {
		t.Errorf("claim row not patched: %+v", v.Claims)
	}
	if got, _ := b.Claim(claim.ID); got.AdminNotes != "verified id" {
		t.Errorf("admin notes not sent: %+v", got)
	}

	if err := c.UpdateClaim(ctx, api, claim.ID, "bogus", ""); !errors.Is(err, client.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if c.View().Claims[0].Status != model.ClaimStatusApproved {
		t.Error("invalid status patched the row")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.For("s1")
	if r.For("s1") != a {
		t.Error("expected the same console for the same session")
	}
	if r.For("s2") == a {
		t.Error("sessions must not share consoles")
	}
	r.Drop("s1")
	if r.For("s1") == a {
		t.Error("dropped console was reused")
	}
}

func TestRegistryEvict(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	stale := r.For("s1")
	now = now.Add(20 * time.Minute)
	fresh := r.For("s2")
	now = now.Add(20 * time.Minute)

	if n := r.Evict(30 * time.Minute); n != 1 {
		t.Fatalf("Evict removed %d consoles, want 1", n)
	}
	if r.Len() != 1 || r.For("s2") != fresh {
		t.Error("recently used console was evicted")
	}
	if r.For("s1") == stale {
		t.Error("idle console survived eviction")
	}
}

func indexOf(items []model.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
