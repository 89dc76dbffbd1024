package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
)

// AdminPerPage is the page size of every admin queue.
const AdminPerPage = 50

// AdminStats returns the console's headline numbers.
func (c *Client) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	var s model.AdminStats
	if err := c.do(ctx, call{op: "admin_stats", method: http.MethodGet, path: "/admin/stats", out: &s}); err != nil {
		return nil, err
	}
	return &s, nil
}

// AdminListItems returns one page of the moderation queue.
func (c *Client) AdminListItems(ctx context.Context, f model.AdminItemFilter) ([]model.Item, error) {
	page, perPage := clampPage(f.Page, f.PerPage, AdminPerPage, 100)
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.FlaggedOnly {
		q.Set("flagged_only", "true")
	}

	var res struct {
		Items []model.Item `json:"items"`
	}
	if err := c.do(ctx, call{op: "admin_list_items", method: http.MethodGet, path: "/admin/items", query: q, out: &res}); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []model.Item{}
	}
	return res.Items, nil
}

// ModerateItem applies a moderation action to an item.
func (c *Client) ModerateItem(ctx context.Context, id, action, note string) error {
	switch action {
	case model.ModerateApprove, model.ModerateReject, model.ModerateArchive:
	default:
		return NewValidationError("action", "unknown moderation action "+strconv.Quote(action), nil)
	}
	return c.do(ctx, call{
		op:     "moderate_item",
		method: http.MethodPost,
		path:   "/admin/items/" + pathID(id) + "/moderate",
		body:   map[string]string{"action": action, "note": note},
	})
}

// DeleteItem permanently removes an item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "delete_item", method: http.MethodDelete, path: "/admin/items/" + pathID(id)})
}

// AdminListClaims returns one page of the claim queue.
func (c *Client) AdminListClaims(ctx context.Context, f model.AdminClaimFilter) ([]model.ClaimRequest, error) {
	page, perPage := clampPage(f.Page, f.PerPage, AdminPerPage, 100)
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if f.Status != "" {
		q.Set("status", f.Status)
	}

	var res struct {
		Claims []model.ClaimRequest `json:"claims"`
	}
	if err := c.do(ctx, call{op: "admin_list_claims", method: http.MethodGet, path: "/admin/claims", query: q, out: &res}); err != nil {
		return nil, err
	}
	if res.Claims == nil {
		res.Claims = []model.ClaimRequest{}
	}
	return res.Claims, nil
}

// AdminUpdateClaim overrides a claim's status.
func (c *Client) AdminUpdateClaim(ctx context.Context, id, status, adminNotes string) error {
	return c.do(ctx, call{
		op:     "admin_update_claim",
		method: http.MethodPut,
		path:   "/admin/claims/" + pathID(id),
		body:   model.ClaimUpdate{Status: status, AdminNotes: adminNotes},
	})
}

// AdminListUsers returns one page of users.
func (c *Client) AdminListUsers(ctx context.Context, f model.UserFilter) ([]model.User, error) {
	page, perPage := clampPage(f.Page, f.PerPage, AdminPerPage, 100)
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if f.Search != "" {
		q.Set("search", f.Search)
	}

	var res struct {
		Users []model.User `json:"users"`
	}
	if err := c.do(ctx, call{op: "admin_list_users", method: http.MethodGet, path: "/admin/users", query: q, out: &res}); err != nil {
		return nil, err
	}
	if res.Users == nil {
		res.Users = []model.User{}
	}
	return res.Users, nil
}
