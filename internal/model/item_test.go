package model

import (
	"errors"
	"strings"
	"testing"
)

func validDraft() ItemDraft {
	return ItemDraft{
		Type:              ItemTypeLost,
		Title:             "Red Backpack",
		Description:       "Red JanSport backpack with textbooks inside.",
		Category:          "bags",
		Location:          "Student Cafeteria",
		Urgency:           UrgencyHigh,
		Reward:            20,
		DateLost:          "2025-03-14",
		ContactPreference: ContactEmail,
	}
}

func TestOwnedBy(t *testing.T) {
	item := Item{UserID: "u-1", OwnerEmail: "a@umt.edu"}

	if !item.OwnedBy("u-1") {
		t.Error("expected owner id to match")
	}
	if item.OwnedBy("a@umt.edu") {
		t.Error("owner email must not count as ownership")
	}
	if (&Item{}).OwnedBy("") {
		t.Error("empty ids must never match")
	}
}

func TestClaimable(t *testing.T) {
	for _, status := range []string{ItemStatusClaimed, ItemStatusResolved, ItemStatusArchived, ItemStatusDisputed, ItemStatusUnderReview} {
		item := Item{Status: status}
		if item.Claimable() {
			t.Errorf("status %q should not be claimable", status)
		}
	}
	if !(&Item{Status: ItemStatusActive}).Claimable() {
		t.Error("active item should be claimable")
	}
}

func TestNormalizeFoundItem(t *testing.T) {
	d := validDraft()
	d.Type = ItemTypeFound
	d.Normalize()

	if d.Reward != 0 {
		t.Errorf("expected found item reward 0, got %d", d.Reward)
	}
	if d.Urgency != UrgencyMedium {
		t.Errorf("expected found item urgency medium, got %q", d.Urgency)
	}
	if d.Images == nil {
		t.Error("expected non-nil images slice")
	}
}

func TestValidateItemDraft(t *testing.T) {
	d := validDraft()
	if err := Validate(&d); err != nil {
		t.Fatalf("Validate valid draft: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ItemDraft)
		field  string
	}{
		{"short title", func(d *ItemDraft) { d.Title = "ab" }, "title"},
		{"long title", func(d *ItemDraft) { d.Title = strings.Repeat("x", 201) }, "title"},
		{"short description", func(d *ItemDraft) { d.Description = "too short" }, "description"},
		{"bad category", func(d *ItemDraft) { d.Category = "vehicles" }, "category"},
		{"missing location", func(d *ItemDraft) { d.Location = "" }, "location"},
		{"negative reward", func(d *ItemDraft) { d.Reward = -5 }, "reward"},
		{"bad urgency", func(d *ItemDraft) { d.Urgency = "urgent" }, "urgency"},
		{"bad date", func(d *ItemDraft) { d.DateLost = "14/03/2025" }, "date_lost"},
		{"bad contact", func(d *ItemDraft) { d.ContactPreference = "pigeon" }, "contact_preference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := Validate(&d)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			found := false
			for _, f := range verr.Fields {
				found = found || (f.Field == tt.field && f.Message != "")
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.field, verr)
			}
		})
	}
}

func TestValidateClaimDraft(t *testing.T) {
	ok := ClaimDraft{ItemID: "42", Message: "I lost this yesterday", ContactPreference: ContactEmail}
	if err := Validate(&ok); err != nil {
		t.Fatalf("Validate valid claim: %v", err)
	}

	short := ok
	short.Message = "mine"
	if err := Validate(&short); err == nil {
		t.Error("expected error for short claim message")
	}
}
