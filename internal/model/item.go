package model

import (
	"slices"
	"time"
)

// Item is a lost-or-found report as returned by the backend.
type Item struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	Images            []string  `json:"images,omitempty"`
	Image             string    `json:"image,omitempty"`
	Reward            int       `json:"reward"`
	Urgency           string    `json:"urgency"`
	DateLost          string    `json:"date_lost,omitempty"`
	TimeLost          string    `json:"time_lost,omitempty"`
	ContactPreference string    `json:"contact_preference,omitempty"`
	Condition         string    `json:"condition,omitempty"`
	StorageLocation   string    `json:"storage_location,omitempty"`
	Status            string    `json:"status"`
	Flagged           bool      `json:"flagged,omitempty"`
	FlagReason        string    `json:"flag_reason,omitempty"`
	OwnerName         string    `json:"owner_name,omitempty"`
	OwnerEmail        string    `json:"owner_email,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses.
const (
	ItemStatusActive      = "active"
	ItemStatusClaimed     = "claimed"
	ItemStatusResolved    = "resolved"
	ItemStatusArchived    = "archived"
	ItemStatusDisputed    = "disputed"
	ItemStatusUnderReview = "under_review"
)

// Urgency tiers.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Contact preferences.
const (
	ContactEmail = "email"
	ContactPhone = "phone"
)

// Category is a selectable item category.
type Category struct {
	ID   string
	Name string
}

// Categories lists the categories the backend accepts, in display order.
var Categories = []Category{
	{"electronics", "Electronics"},
	{"bags", "Bags & Backpacks"},
	{"jewelry", "Jewelry"},
	{"clothing", "Clothing"},
	{"personal", "Personal Items"},
	{"books", "Books & Stationery"},
	{"sports", "Sports Equipment"},
	{"other", "Other"},
}

// Locations lists the campus locations offered by the post forms.
var Locations = []string{
	"Main Library",
	"Student Cafeteria",
	"Computer Science Building",
	"Engineering Building",
	"Business Building",
	"Art Building",
	"Main Gymnasium",
	"Student Center",
	"Parking Lot A",
	"Parking Lot B",
	"Dormitory Area",
	"Other",
}

// Conditions lists the condition grades for found items.
var Conditions = []string{"excellent", "good", "fair", "poor"}

// IsLost reports whether the item is a lost report.
func (i *Item) IsLost() bool {
	return i.Type == ItemTypeLost
}

// OwnedBy reports whether userID posted the item. The owner user id is the
// only authoritative key; owner email and contact are display-only.
func (i *Item) OwnedBy(userID string) bool {
	return userID != "" && i.UserID == userID
}

// Claimable reports whether the item accepts new claims.
func (i *Item) Claimable() bool {
	return i.Status == ItemStatusActive
}

// ValidItemStatus reports whether status is a known lifecycle status.
func ValidItemStatus(status string) bool {
	return slices.Contains([]string{
		ItemStatusActive, ItemStatusClaimed, ItemStatusResolved,
		ItemStatusArchived, ItemStatusDisputed, ItemStatusUnderReview,
	}, status)
}

// ItemList is one page of items.
type ItemList struct {
	Items   []Item `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	HasNext bool   `json:"has_next"`
	HasPrev bool   `json:"has_prev"`
}

// ItemFilter selects items for a listing page.
type ItemFilter struct {
	Type      string
	Category  string
	Location  string
	Urgency   string
	Search    string
	HasReward bool
	Page      int
	PerPage   int
}

// ItemDraft is the payload for creating an item.
type ItemDraft struct {
	Type              string   `json:"type" validate:"required,oneof=lost found"`
	Title             string   `json:"title" validate:"required,min=3,max=200"`
	Description       string   `json:"description" validate:"required,min=10,max=2000"`
	Category          string   `json:"category" validate:"required,oneof=electronics bags jewelry clothing personal books sports other"`
	Location          string   `json:"location" validate:"required,min=2,max=100"`
	Images            []string `json:"images"`
	Reward            int      `json:"reward" validate:"gte=0"`
	Urgency           string   `json:"urgency" validate:"required,oneof=low medium high"`
	DateLost          string   `json:"date_lost,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TimeLost          string   `json:"time_lost,omitempty" validate:"omitempty,datetime=15:04"`
	ContactPreference string   `json:"contact_preference" validate:"required,oneof=email phone"`
	Condition         string   `json:"condition,omitempty" validate:"omitempty,oneof=excellent good fair poor"`
	StorageLocation   string   `json:"storage_location,omitempty" validate:"omitempty,max=200"`
}

// Normalize applies the per-type defaults the backend expects: found items
// carry no reward and a medium urgency.
func (d *ItemDraft) Normalize() {
	if d.Type == ItemTypeFound {
		d.Reward = 0
		d.Urgency = UrgencyMedium
	}
	if d.Urgency == "" {
		d.Urgency = UrgencyMedium
	}
	if d.ContactPreference == "" {
		d.ContactPreference = ContactEmail
	}
	if d.Images == nil {
		d.Images = []string{}
	}
}
