package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
	"github.com/erazemk/lostfound/internal/workflow"
)

// api returns the backend client bound to the viewer, or the anonymous
// client for signed-out viewers.
func (srv *Server) api(s *session.Session) *client.Client {
	if s == nil {
		return srv.Backend
	}
	return srv.Backend.As(s)
}

func (srv *Server) workflow(s *session.Session) *workflow.Workflow {
	return workflow.New(srv.api(s), workflow.Actor{
		SessionID: s.ID,
		UserID:    s.UserID(),
		Admin:     s.IsAdmin(),
	}, srv.Guard)
}

// Home handles GET /.
func (srv *Server) Home(w http.ResponseWriter, r *http.Request, s *session.Session) {
	p := &struct {
		PageData
		Lost  []model.Item
		Found []model.Item
	}{PageData: PageData{Title: "Lost & Found", Session: s}}

	for _, kind := range []string{model.ItemTypeLost, model.ItemTypeFound} {
		list, err := srv.api(s).ListItems(r.Context(), model.ItemFilter{Type: kind, PerPage: 6})
		if err != nil {
			if client.KindOf(err) == client.KindUnauthorized {
				srv.toLogin(w, r)
				return
			}
			// The landing page still renders without listings.
			p.Error = describeError(err).Message
			continue
		}
		if kind == model.ItemTypeLost {
			p.Lost = list.Items
		} else {
			p.Found = list.Items
		}
	}
	srv.Templates.Render(w, http.StatusOK, "home.html", p)
}

// Dashboard handles GET /dashboard.
func (srv *Server) Dashboard(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := srv.syncProfile(r.Context(), s); err != nil {
		if client.KindOf(err) == client.KindUnauthorized {
			srv.toLogin(w, r)
			return
		}
		slog.Warn("failed to refresh profile", "user", s.UserID(), "error", err)
	}

	dash, err := srv.api(s).Dashboard(r.Context())
	if err != nil {
		srv.fail(w, r, s, err)
		return
	}

	unread, err := srv.workflow(s).UnreadTotal(r.Context())
	if err != nil {
		slog.Warn("failed to count unread messages", "user", s.UserID(), "error", err)
	}

	srv.Templates.Render(w, http.StatusOK, "dashboard.html", &struct {
		PageData
		Dashboard *model.Dashboard
		Unread    int
	}{
		PageData:  PageData{Title: "Dashboard", Session: s},
		Dashboard: dash,
		Unread:    unread,
	})
}

// syncProfile re-reads the viewer's profile so that name and role changes
// made in the backend reach the stored session.
func (srv *Server) syncProfile(ctx context.Context, s *session.Session) error {
	u, err := srv.api(s).Me(ctx)
	if err != nil {
		return err
	}
	if u.ID != s.User.ID {
		return fmt.Errorf("backend returned profile %q for user %q", u.ID, s.User.ID)
	}
	if u.DisplayName() == s.User.DisplayName() && u.Email == s.User.Email && u.Role() == s.User.Role() {
		return nil
	}
	if err := srv.Sessions.Refresh(ctx, s, *u); err != nil {
		return err
	}
	slog.Info("session profile refreshed", "user", u.ID, "role", u.Role())
	return nil
}
