package model

// AdminStats is the admin console's headline numbers.
type AdminStats struct {
	TotalUsers    int     `json:"total_users"`
	ActiveItems   int     `json:"active_items"`
	ResolvedItems int     `json:"resolved_items"`
	PendingClaims int     `json:"pending_claims"`
	SuccessRate   float64 `json:"success_rate"`
	TotalItems    int     `json:"total_items"`
}

// DashboardStats summarizes one user's activity.
type DashboardStats struct {
	TotalItemsPosted int     `json:"total_items_posted"`
	ItemsRecovered   int     `json:"items_recovered"`
	HelpingOthers    int     `json:"helping_others"`
	SuccessRate      float64 `json:"success_rate"`
}

// Dashboard is a user's dashboard page payload.
type Dashboard struct {
	Stats         DashboardStats `json:"stats"`
	RecentItems   []Item         `json:"recent_items"`
	ClaimRequests []ClaimRequest `json:"claim_requests"`
}

// Upload is the backend's response to an image upload.
type Upload struct {
	URL       string `json:"url"`
	PublicURL string `json:"public_url"`
	Path      string `json:"path"`
}

// Moderation actions.
const (
	ModerateApprove = "approve"
	ModerateReject  = "reject"
	ModerateArchive = "archive"
)

// AdminItemFilter selects rows for the admin item queue.
type AdminItemFilter struct {
	Status      string
	FlaggedOnly bool
	Page        int
	PerPage     int
}

// AdminClaimFilter selects rows for the admin claim queue.
type AdminClaimFilter struct {
	Status  string
	Page    int
	PerPage int
}
