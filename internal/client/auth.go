package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
)

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error) {
	if err := model.Validate(&creds); err != nil {
		return nil, localValidation(err)
	}

	var res model.AuthResult
	err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "/auth/login", body: creds, out: &res})
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, &Error{Kind: KindServer, Message: "login response carried no token"}
	}
	return &res, nil
}

// Register creates an account. The caller logs in separately.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	if err := model.Validate(&reg); err != nil {
		return localValidation(err)
	}
	return c.do(ctx, call{op: "register", method: http.MethodPost, path: "/auth/register", body: reg})
}

// Me returns the profile behind the bound credentials.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, call{op: "me", method: http.MethodGet, path: "/auth/me", out: &u}); err != nil {
		return nil, err
	}
	return &u, nil
}

// localValidation converts a model validation failure into a client error.
func localValidation(err error) *Error {
	var verr *model.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		return NewValidationError(verr.Fields[0].Field, verr.Error(), verr)
	}
	return NewValidationError("", err.Error(), err)
}
