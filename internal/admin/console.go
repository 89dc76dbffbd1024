// Package admin implements the moderation console: page-scoped queues of
// items, claims and users with a local row cache patched after each mutation.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
)

// ErrNotConfirmed is returned when a destructive action arrives without the
// operator's explicit confirmation. Nothing is sent to the backend.
var ErrNotConfirmed = errors.New("action requires confirmation")

// API is the admin part of the backend client.
type API interface {
	AdminStats(ctx context.Context) (*model.AdminStats, error)
	AdminListItems(ctx context.Context, f model.AdminItemFilter) ([]model.Item, error)
	ModerateItem(ctx context.Context, id, action, note string) error
	DeleteItem(ctx context.Context, id string) error
	AdminListClaims(ctx context.Context, f model.AdminClaimFilter) ([]model.ClaimRequest, error)
	AdminUpdateClaim(ctx context.Context, id, status, adminNotes string) error
	AdminListUsers(ctx context.Context, f model.UserFilter) ([]model.User, error)
}

// Filters selects the rows of each queue.
type Filters struct {
	ItemStatus  string
	FlaggedOnly bool
	ClaimStatus string
	UserSearch  string
}

// DefaultFilters shows every item and the pending claims.
func DefaultFilters() Filters {
	return Filters{ClaimStatus: model.ClaimStatusPending}
}

// View is a consistent snapshot of the console for rendering.
type View struct {
	Rows
	Stats    *model.AdminStats
	Filters  Filters
	Alert    string
	LoadedAt time.Time
}

// Console is one operator's moderation state. Methods take the API bound to
// the current request's session.
type Console struct {
	mu       sync.Mutex
	rows     Rows
	stats    *model.AdminStats
	filters  Filters
	alert    string
	loadedAt time.Time
	now      func() time.Time
}

// NewConsole creates an empty console.
func NewConsole() *Console {
	return &Console{filters: DefaultFilters(), now: time.Now}
}

// Load fetches stats and one page of every queue. On failure the previous
// rows are kept.
func (c *Console) Load(ctx context.Context, api API, f Filters) error {
	stats, err := api.AdminStats(ctx)
	if err != nil {
		return fmt.Errorf("loading stats: %w", err)
	}
	items, err := api.AdminListItems(ctx, model.AdminItemFilter{Status: f.ItemStatus, FlaggedOnly: f.FlaggedOnly, Page: 1, PerPage: client.AdminPerPage})
	if err != nil {
		return fmt.Errorf("loading items: %w", err)
	}
	claims, err := api.AdminListClaims(ctx, model.AdminClaimFilter{Status: f.ClaimStatus, Page: 1, PerPage: client.AdminPerPage})
	if err != nil {
		return fmt.Errorf("loading claims: %w", err)
	}
	users, err := api.AdminListUsers(ctx, model.UserFilter{Search: f.UserSearch, Page: 1, PerPage: client.AdminPerPage})
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
	c.rows = Rows{Items: items, Claims: claims, Users: users}
	c.filters = f
	c.loadedAt = c.now()
	return nil
}

// Stale reports whether the cache is older than maxAge or was never loaded.
func (c *Console) Stale(maxAge time.Duration, f Filters) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt.IsZero() || c.filters != f || c.now().Sub(c.loadedAt) > maxAge
}

// View returns the current snapshot and clears the pending alert.
func (c *Console) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{Rows: c.rows, Stats: c.stats, Filters: c.filters, Alert: c.alert, LoadedAt: c.loadedAt}
	c.alert = ""
	return v
}

// Moderate applies a moderation action to an item.
func (c *Console) Moderate(ctx context.Context, api API, id, action, note string) error {
	err := api.ModerateItem(ctx, id, action, note)
	return c.apply(ctx, api, Event{Op: OpModerate, ID: id, Action: action, Note: note, Err: err})
}

// Delete permanently removes an item. It refuses to act unless confirmed.
func (c *Console) Delete(ctx context.Context, api API, id string, confirmed bool) error {
	if !confirmed {
		c.setAlert("Deleting an item cannot be undone. Confirm the deletion to continue.")
		return ErrNotConfirmed
	}
	err := api.DeleteItem(ctx, id)
	return c.apply(ctx, api, Event{Op: OpDelete, ID: id, Err: err})
}

// UpdateClaim overrides a claim's status.
func (c *Console) UpdateClaim(ctx context.Context, api API, id, status, notes string) error {
	switch status {
	case model.ClaimStatusApproved, model.ClaimStatusRejected, model.ClaimStatusCompleted, model.ClaimStatusPending:
	default:
		err := client.NewValidationError("status", "unknown claim status", nil)
		return c.apply(ctx, api, Event{Op: OpUpdateClaim, ID: id, Err: err})
	}
	err := api.AdminUpdateClaim(ctx, id, status, notes)
	return c.apply(ctx, api, Event{Op: OpUpdateClaim, ID: id, Action: status, Note: notes, Err: err})
}

// apply reduces ev into the cache. Failures leave the rows as they were and
// raise an alert; successes also refetch the stats.
func (c *Console) apply(ctx context.Context, api API, ev Event) error {
	c.mu.Lock()
	c.rows = Reduce(c.rows, ev)
	if ev.Err != nil {
		c.alert = "The action failed and nothing was changed. Please try again. (" + ev.Err.Error() + ")"
	}
	c.mu.Unlock()

	if ev.Err != nil {
		slog.Warn("admin action failed", "op", ev.Op, "id", ev.ID, "error", ev.Err)
		return ev.Err
	}
	slog.Info("admin action applied", "op", ev.Op, "id", ev.ID, "action", ev.Action)

	stats, err := api.AdminStats(ctx)
	if err != nil {
		slog.Warn("stats refetch failed", "error", err)
		return nil
	}
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
	return nil
}

func (c *Console) setAlert(msg string) {
	c.mu.Lock()
	c.alert = msg
	c.mu.Unlock()
}

// Registry keeps one console per operator session. Consoles of sessions
// that ended without a logout are dropped by the session manager's end hook
// or by Evict.
type Registry struct {
	mu       sync.Mutex
	consoles map[string]*registryEntry
	now      func() time.Time
}

type registryEntry struct {
	console *Console
	used    time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{consoles: make(map[string]*registryEntry), now: time.Now}
}

// For returns the console of a session, creating it on first use.
func (r *Registry) For(sessionID string) *Console {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.consoles[sessionID]
	if !ok {
		e = &registryEntry{console: NewConsole()}
		r.consoles[sessionID] = e
	}
	e.used = r.now()
	return e.console
}

// Drop forgets a session's console.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.consoles, sessionID)
	r.mu.Unlock()
}

// Evict drops consoles not used within maxIdle and returns how many went.
func (r *Registry) Evict(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for id, e := range r.consoles {
		if e.used.Before(cutoff) {
			delete(r.consoles, id)
			n++
		}
	}
	return n
}

// Len returns the number of live consoles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consoles)
}
