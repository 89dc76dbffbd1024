package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/secure"
	"github.com/erazemk/lostfound/internal/store"
)

// ErrBusy is returned when a login or logout for the same browser or
// account is already running.
var ErrBusy = errors.New("another sign-in or sign-out is in progress")

// Authenticator is the part of the backend client the manager needs.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error)
}

// Config configures a Manager.
type Config struct {
	CookieSecret string
	Lifetime     time.Duration
	SecureCookie bool
}

// Manager creates, loads and destroys sessions. Login and Logout are the
// single mutation entry point; concurrent calls for the same key are refused
// rather than queued.
type Manager struct {
	db     *sql.DB
	sealer *secure.Sealer
	authn  Authenticator
	cfg    Config
	now    func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
	onEnd    []func(sessionID string)
}

// NewManager creates a session manager. tokenSecret keys the at-rest
// encryption of backend tokens.
func NewManager(db *sql.DB, authn Authenticator, tokenSecret string, cfg Config) (*Manager, error) {
	sealer, err := secure.NewSealer([]byte(tokenSecret))
	if err != nil {
		return nil, fmt.Errorf("creating sealer: %w", err)
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = auth.DefaultExpiry
	}
	return &Manager{
		db:       db,
		sealer:   sealer,
		authn:    authn,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		inflight: make(map[string]struct{}),
	}, nil
}

// enter claims key for one mutation. The returned func releases it.
func (m *Manager) enter(key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[key]; busy {
		return nil, ErrBusy
	}
	m.inflight[key] = struct{}{}
	return func() {
		m.mu.Lock()
		delete(m.inflight, key)
		m.mu.Unlock()
	}, nil
}

// Login authenticates against the backend and persists a new session. The
// returned cookie must be set on the response.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (*Session, *http.Cookie, error) {
	creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))
	release, err := m.enter("login:" + creds.Email)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	res, err := m.authn.Login(ctx, creds)
	if err != nil {
		return nil, nil, err
	}

	now := m.now()
	id := uuid.NewString()
	sealed, err := m.sealer.Seal(res.AccessToken, id)
	if err != nil {
		return nil, nil, fmt.Errorf("sealing backend token: %w", err)
	}

	rec := &store.SessionRecord{
		ID:          id,
		User:        res.User,
		SealedToken: sealed,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.cfg.Lifetime),
	}
	if err := store.CreateSession(ctx, m.db, rec); err != nil {
		return nil, nil, err
	}

	cookieValue, err := auth.GenerateToken(m.cfg.CookieSecret, id, res.User.ID, res.User.Role(), rec.ExpiresAt)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user signed in", "user", res.User.ID, "role", res.User.Role(), "session", id)
	return m.bind(rec, res.AccessToken), m.cookie(cookieValue, rec.ExpiresAt), nil
}

// Logout revokes the session and returns a cookie that deletes the browser's copy.
func (m *Manager) Logout(ctx context.Context, s *Session) (*http.Cookie, error) {
	if s == nil {
		return m.ExpiredCookie(), nil
	}
	release, err := m.enter("session:" + s.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	s.mu.Lock()
	s.cleared = true
	s.token = ""
	s.mu.Unlock()

	if err := store.RevokeSession(ctx, m.db, s.ID, s.ExpiresAt); err != nil {
		return nil, err
	}
	slog.Info("user signed out", "user", s.User.ID, "session", s.ID)
	return m.ExpiredCookie(), nil
}

// Load returns the session behind the request's cookie, or nil for an
// anonymous request. Invalid, revoked or expired cookies are treated as
// anonymous.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	claims, err := auth.ValidateToken(m.cfg.CookieSecret, cookie.Value)
	if err != nil {
		return nil, nil
	}

	ctx := r.Context()
	revoked, err := store.IsSessionRevoked(ctx, m.db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}

	rec, err := store.GetSession(ctx, m.db, claims.ID, m.now())
	if err != nil || rec == nil {
		return nil, err
	}

	token, err := m.sealer.Open(rec.SealedToken, rec.ID)
	if err != nil {
		slog.Warn("dropping session with unreadable token", "session", rec.ID, "error", err)
		if err := store.DeleteSession(ctx, m.db, rec.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return m.bind(rec, token), nil
}

// OnEnd registers fn to run when the backend rejects a session's token and
// the session is dropped.
func (m *Manager) OnEnd(fn func(sessionID string)) {
	m.mu.Lock()
	m.onEnd = append(m.onEnd, fn)
	m.mu.Unlock()
}

// Active counts the sessions that have not expired or been revoked.
func (m *Manager) Active(ctx context.Context) (int, error) {
	return store.CountSessions(ctx, m.db, m.now())
}

// Refresh stores an updated profile for the session.
func (m *Manager) Refresh(ctx context.Context, s *Session, u model.User) error {
	if err := store.UpdateSessionUser(ctx, m.db, s.ID, u); err != nil {
		return err
	}
	s.User = u
	return nil
}

// ExpiredCookie deletes the session cookie.
func (m *Manager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// Purge removes expired sessions. It is run periodically by the server.
func (m *Manager) Purge(ctx context.Context) (int64, error) {
	return store.PurgeExpired(ctx, m.db, m.now())
}

func (m *Manager) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) bind(rec *store.SessionRecord, token string) *Session {
	return &Session{
		ID:        rec.ID,
		User:      rec.User,
		ExpiresAt: rec.ExpiresAt,
		token:     token,
		onClear:   m.expire,
	}
}

// expire drops a session the backend no longer accepts.
func (m *Manager) expire(s *Session) {
	m.mu.Lock()
	hooks := m.onEnd
	m.mu.Unlock()
	for _, fn := range hooks {
		fn(s.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.RevokeSession(ctx, m.db, s.ID, s.ExpiresAt); err != nil {
		slog.Error("failed to drop expired session", "session", s.ID, "error", err)
		return
	}
	slog.Info("session cleared after backend rejected its token", "user", s.User.ID, "session", s.ID)
}

// compile-time check
var _ client.Credentials = (*Session)(nil)
