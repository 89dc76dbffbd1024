package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
)

// DefaultPerPage is the listing page size used when the filter leaves it unset.
const DefaultPerPage = 12

// MaxPerPage is the largest listing page the backend serves.
const MaxPerPage = 50

// ListItems returns one page of items matching f.
func (c *Client) ListItems(ctx context.Context, f model.ItemFilter) (*model.ItemList, error) {
	q := url.Values{}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.Urgency != "" {
		q.Set("urgency", f.Urgency)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.HasReward {
		q.Set("has_reward", "true")
	}
	page, perPage := clampPage(f.Page, f.PerPage, DefaultPerPage, MaxPerPage)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var list model.ItemList
	if err := c.do(ctx, call{op: "list_items", method: http.MethodGet, path: "/items", query: q, out: &list}); err != nil {
		return nil, err
	}
	if list.Items == nil {
		list.Items = []model.Item{}
	}
	return &list, nil
}

// GetItem returns a single item.
func (c *Client) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	if err := c.do(ctx, call{op: "get_item", method: http.MethodGet, path: "/items/" + pathID(id), out: &item}); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem posts a new item. The draft is validated locally first.
func (c *Client) CreateItem(ctx context.Context, draft model.ItemDraft) (*model.Item, error) {
	draft.Normalize()
	if err := model.Validate(&draft); err != nil {
		return nil, localValidation(err)
	}

	var item model.Item
	if err := c.do(ctx, call{op: "create_item", method: http.MethodPost, path: "/items", body: draft, out: &item}); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemStatus moves an item the caller owns to a new lifecycle status.
func (c *Client) UpdateItemStatus(ctx context.Context, id, status string) (*model.Item, error) {
	if !model.ValidItemStatus(status) {
		return nil, NewValidationError("status", "unknown item status "+strconv.Quote(status), nil)
	}
	var item model.Item
	err := c.do(ctx, call{
		op:     "update_item",
		method: http.MethodPut,
		path:   "/items/" + pathID(id),
		body:   map[string]string{"status": status},
		out:    &item,
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Dashboard returns the signed-in user's dashboard.
func (c *Client) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var d model.Dashboard
	if err := c.do(ctx, call{op: "dashboard", method: http.MethodGet, path: "/dashboard", out: &d}); err != nil {
		return nil, err
	}
	return &d, nil
}

func clampPage(page, perPage, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = def
	}
	if perPage > max {
		perPage = max
	}
	return page, perPage
}
