package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/session"
)

// Access is the guard attached to a page route.
type Access int

// Route guards.
const (
	Public    Access = iota // anyone
	GuestOnly               // signed-out visitors; others go to the dashboard
	SignedIn                // any signed-in user
	Member                  // signed-in non-admins; admins go to the console
	AdminOnly               // administrators; others go to the dashboard
)

func (a Access) String() string {
	switch a {
	case GuestOnly:
		return "guest"
	case SignedIn:
		return "signed-in"
	case Member:
		return "member"
	case AdminOnly:
		return "admin"
	default:
		return "public"
	}
}

// Redirect returns where a viewer holding s must be sent instead of the
// route, or "" when the route may be shown. A nil session is anonymous.
func (a Access) Redirect(s *session.Session) string {
	signedIn := s.Active()
	switch a {
	case GuestOnly:
		if signedIn {
			return "/dashboard"
		}
	case SignedIn:
		if !signedIn {
			return "/login"
		}
	case Member:
		if !signedIn {
			return "/login"
		}
		if s.IsAdmin() {
			return "/admin"
		}
	case AdminOnly:
		if !signedIn {
			return "/login"
		}
		if !s.IsAdmin() {
			return "/dashboard"
		}
	}
	return ""
}

// pageHandler is a page handler that receives the viewer's session
// explicitly. The session is nil for anonymous viewers.
type pageHandler func(w http.ResponseWriter, r *http.Request, s *session.Session)

// guard loads the session, applies the route's access rule and hands the
// session to h.
func (srv *Server) guard(access Access, h pageHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := srv.Sessions.Load(r)
		if err != nil {
			slog.Error("failed to load session", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if s == nil && hasSessionCookie(r) {
			// Stale, revoked or forged cookie.
			http.SetCookie(w, srv.Sessions.ExpiredCookie())
		}

		if target := access.Redirect(s); target != "" {
			if target == "/login" && r.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		h(w, r, s)
	})
}

func hasSessionCookie(r *http.Request) bool {
	c, err := r.Cookie(auth.CookieName)
	return err == nil && c.Value != ""
}

// safeNext returns next when it is a local path, else fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	return next
}
