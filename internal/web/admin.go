package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/lostfound/internal/admin"
	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
)

func adminFilters(q url.Values) admin.Filters {
	f := admin.DefaultFilters()
	f.ItemStatus = q.Get("item_status")
	f.FlaggedOnly = q.Get("flagged_only") == "true" || q.Get("flagged_only") == "on"
	if q.Has("claim_status") {
		f.ClaimStatus = q.Get("claim_status")
		if f.ClaimStatus == "all" {
			f.ClaimStatus = ""
		}
	}
	f.UserSearch = q.Get("user_search")
	return f
}

type adminPage struct {
	PageData
	View          admin.View
	Return        string
	ConfirmDelete *model.Item
	ItemStatuses  []string
	ClaimStatuses []string
}

// AdminPage handles GET /admin. Rows are served from the operator's console
// cache while it is fresh; mutations patch the cache in place.
func (srv *Server) AdminPage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	q := r.URL.Query()
	f := adminFilters(q)
	console := srv.Consoles.For(s.ID)

	var loadErr error
	if console.Stale(srv.ConsoleMaxAge, f) {
		loadErr = console.Load(r.Context(), srv.api(s), f)
		if client.KindOf(loadErr) == client.KindUnauthorized {
			srv.toLogin(w, r)
			return
		}
	}

	p := &adminPage{
		PageData: PageData{Title: "Admin console", Session: s},
		View:     console.View(),
		Return:   returnURL(r.URL),
		ItemStatuses: []string{
			model.ItemStatusActive, model.ItemStatusClaimed, model.ItemStatusResolved,
			model.ItemStatusArchived, model.ItemStatusDisputed, model.ItemStatusUnderReview,
		},
		ClaimStatuses: []string{
			model.ClaimStatusPending, model.ClaimStatusApproved,
			model.ClaimStatusRejected, model.ClaimStatusCompleted,
		},
	}
	if loadErr != nil {
		p.Error = describeError(loadErr).Message
	}
	if id := q.Get("confirm_delete"); id != "" {
		for i := range p.View.Items {
			if p.View.Items[i].ID == id {
				p.ConfirmDelete = &p.View.Items[i]
				break
			}
		}
	}

	status := http.StatusOK
	if loadErr != nil && p.View.LoadedAt.IsZero() {
		status = http.StatusBadGateway
	}
	srv.Templates.Render(w, status, "admin.html", p)
}

// returnURL is the admin page address without one-shot parameters.
func returnURL(u *url.URL) string {
	q := u.Query()
	q.Del("confirm_delete")
	if len(q) == 0 {
		return "/admin"
	}
	return "/admin?" + q.Encode()
}

// returnQuery parses the console filters carried in the return field.
func returnQuery(r *http.Request) url.Values {
	u, err := url.Parse(safeNext(r.FormValue("return"), "/admin"))
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}

// adminDone sends the operator back to the console. A failed mutation has
// already left an alert on the console; only expired credentials leave it.
func (srv *Server) adminDone(w http.ResponseWriter, r *http.Request, err error) {
	if client.KindOf(err) == client.KindUnauthorized {
		srv.toLogin(w, r)
		return
	}
	http.Redirect(w, r, safeNext(r.FormValue("return"), "/admin"), http.StatusSeeOther)
}

// AdminRefresh handles POST /admin/refresh.
func (srv *Server) AdminRefresh(w http.ResponseWriter, r *http.Request, s *session.Session) {
	err := srv.Consoles.For(s.ID).Load(r.Context(), srv.api(s), adminFilters(returnQuery(r)))
	if err != nil {
		slog.Warn("admin refresh failed", "user", s.UserID(), "error", err)
	}
	srv.adminDone(w, r, err)
}

// AdminModerate handles POST /admin/items/{id}/moderate.
func (srv *Server) AdminModerate(w http.ResponseWriter, r *http.Request, s *session.Session) {
	err := srv.Consoles.For(s.ID).Moderate(r.Context(), srv.api(s),
		r.PathValue("id"), r.FormValue("action"), r.FormValue("note"))
	srv.adminDone(w, r, err)
}

// AdminDelete handles POST /admin/items/{id}/delete. Without confirm=yes it
// only asks the operator to confirm.
func (srv *Server) AdminDelete(w http.ResponseWriter, r *http.Request, s *session.Session) {
	id := r.PathValue("id")
	err := srv.Consoles.For(s.ID).Delete(r.Context(), srv.api(s), id, r.FormValue("confirm") == "yes")
	if errors.Is(err, admin.ErrNotConfirmed) {
		q := returnQuery(r)
		q.Set("confirm_delete", id)
		http.Redirect(w, r, "/admin?"+q.Encode(), http.StatusSeeOther)
		return
	}
	srv.adminDone(w, r, err)
}

// AdminUpdateClaim handles POST /admin/claims/{id}.
func (srv *Server) AdminUpdateClaim(w http.ResponseWriter, r *http.Request, s *session.Session) {
	err := srv.Consoles.For(s.ID).UpdateClaim(r.Context(), srv.api(s),
		r.PathValue("id"), r.FormValue("status"), r.FormValue("admin_notes"))
	srv.adminDone(w, r, err)
}
