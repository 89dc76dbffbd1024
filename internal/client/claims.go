package client

import (
	"context"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
)

// SubmitClaim creates a pending claim (and its conversation) on an item.
func (c *Client) SubmitClaim(ctx context.Context, draft model.ClaimDraft) (*model.ClaimRequest, error) {
	if draft.ContactPreference == "" {
		draft.ContactPreference = model.ContactEmail
	}
	if err := model.Validate(&draft); err != nil {
		return nil, localValidation(err)
	}

	var claim model.ClaimRequest
	if err := c.do(ctx, call{op: "submit_claim", method: http.MethodPost, path: "/claims", body: draft, out: &claim}); err != nil {
		return nil, err
	}
	return &claim, nil
}

// UpdateClaim changes a claim's status as the item owner.
func (c *Client) UpdateClaim(ctx context.Context, id, status string) (*model.ClaimRequest, error) {
	var claim model.ClaimRequest
	err := c.do(ctx, call{
		op:     "update_claim",
		method: http.MethodPut,
		path:   "/claims/" + pathID(id),
		body:   model.ClaimUpdate{Status: status},
		out:    &claim,
	})
	if err != nil {
		return nil, err
	}
	return &claim, nil
}
