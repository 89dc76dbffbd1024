package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credentials supplies the bearer token attached to outgoing calls and is
// told when the backend rejects it.
type Credentials interface {
	BearerToken() string
	Unauthorized()
}

// Client calls the Lost & Found backend. A Client without credentials can
// only reach public endpoints; use As to bind a session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *Metrics
	creds      Credentials
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records call outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the backend at baseURL (e.g. http://localhost:8000/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// As returns a copy of the client that authenticates with creds.
func (c *Client) As(creds Credentials) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

// call describes one backend request.
type call struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        any
	contentType string
	raw         io.Reader
	out         any
}

func (c *Client) do(ctx context.Context, cl call) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.observe(cl.op, start, err)
		if err != nil {
			slog.Warn("backend call failed", "op", cl.op, "kind", KindOf(err).String(), "error", err)
		}
	}()

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	contentType := cl.contentType
	switch {
	case cl.raw != nil:
		body = cl.raw
	case cl.body != nil:
		data, err := json.Marshal(cl.body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "could not encode request", Err: err}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.creds != nil {
		if token := c.creds.BearerToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "backend unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cerr := errorFromResponse(resp)
		if cerr.Kind == KindUnauthorized && c.creds != nil {
			c.creds.Unauthorized()
		}
		return cerr
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "malformed backend response", Err: err}
	}
	return nil
}

// errorBody covers the error shapes the backend produces: {"detail": "..."},
// {"detail": [{"loc": [...], "msg": "..."}]} and {"error": "..."}.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

type fieldDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func errorFromResponse(resp *http.Response) *Error {
	cerr := &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		cerr.Message = http.StatusText(resp.StatusCode)
		return cerr
	}

	switch {
	case eb.Error != "":
		cerr.Message = eb.Error
	case len(eb.Detail) > 0:
		var msg string
		if json.Unmarshal(eb.Detail, &msg) == nil {
			cerr.Message = msg
			break
		}
		var fields []fieldDetail
		if json.Unmarshal(eb.Detail, &fields) == nil && len(fields) > 0 {
			parts := make([]string, 0, len(fields))
			for _, f := range fields {
				loc := make([]string, 0, len(f.Loc))
				for _, l := range f.Loc {
					if s := fmt.Sprint(l); s != "body" {
						loc = append(loc, s)
					}
				}
				parts = append(parts, strings.Join(loc, ".")+": "+f.Msg)
			}
			cerr.Field = fieldName(fields[0].Loc)
			cerr.Message = strings.Join(parts, ", ")
		}
	}
	if cerr.Message == "" {
		cerr.Message = http.StatusText(resp.StatusCode)
	}
	return cerr
}

func fieldName(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	return fmt.Sprint(loc[len(loc)-1])
}

// IsTransient reports whether err is a failure the user should simply retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrServer)
}

func pathID(id string) string {
	return url.PathEscape(id)
}
