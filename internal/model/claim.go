package model

import "time"

// ClaimRequest is one user's claim on an item.
type ClaimRequest struct {
	ID                string    `json:"id"`
	ItemID            string    `json:"item_id"`
	ClaimerID         string    `json:"claimer_id"`
	Message           string    `json:"message"`
	ContactPreference string    `json:"contact_preference,omitempty"`
	Status            string    `json:"status"`
	AdminNotes        string    `json:"admin_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ClaimerName  string `json:"claimer_name,omitempty"`
	ClaimerEmail string `json:"claimer_email,omitempty"`
	ItemTitle    string `json:"item_title,omitempty"`
	ItemType     string `json:"item_type,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending   = "pending"
	ClaimStatusApproved  = "approved"
	ClaimStatusRejected  = "rejected"
	ClaimStatusCompleted = "completed"
)

// ClaimDraft is the payload for submitting a claim.
type ClaimDraft struct {
	ItemID            string `json:"item_id" validate:"required"`
	Message           string `json:"message" validate:"required,min=10,max=1000"`
	ContactPreference string `json:"contact_preference" validate:"required,oneof=email phone"`
}

// ClaimUpdate is the payload for changing a claim's status.
type ClaimUpdate struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes,omitempty"`
}
