// Package session holds the signed-in user of a browser. A Session is passed
// explicitly to every handler; the Manager is the only thing that creates or
// destroys one.
package session

import (
	"sync"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// Session is one browser's authenticated state. It satisfies
// client.Credentials so a backend client can be bound to it directly.
type Session struct {
	ID        string
	User      model.User
	ExpiresAt time.Time

	mu      sync.Mutex
	token   string
	cleared bool
	onClear func(*Session)
}

// BearerToken returns the backend credential, or "" once cleared.
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared {
		return ""
	}
	return s.token
}

// Unauthorized is called by the backend client on a 401. The session is
// cleared at most once.
func (s *Session) Unauthorized() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.cleared {
		s.mu.Unlock()
		return
	}
	s.cleared = true
	s.token = ""
	hook := s.onClear
	s.mu.Unlock()

	if hook != nil {
		hook(s)
	}
}

// Active reports whether the session still carries a usable credential.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cleared
}

// Role returns the user's role, or "" for a nil or cleared session.
func (s *Session) Role() string {
	if !s.Active() {
		return ""
	}
	return s.User.Role()
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool {
	return model.RoleAtLeast(s.Role(), model.RoleAdmin)
}

// UserID returns the signed-in user's id, or "".
func (s *Session) UserID() string {
	if !s.Active() {
		return ""
	}
	return s.User.ID
}
