package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
	"github.com/erazemk/lostfound/internal/workflow"
)

type itemsPage struct {
	PageData
	Kind       string
	List       *model.ItemList
	Filter     model.ItemFilter
	Categories []model.Category
	Locations  []string
	PrevURL    string
	NextURL    string
}

// ItemsPage handles GET /lost-items and GET /found-items.
func (srv *Server) ItemsPage(kind string) pageHandler {
	return func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		f := itemFilterFromQuery(kind, r.URL.Query())

		list, err := srv.api(s).ListItems(r.Context(), f)
		if err != nil {
			srv.fail(w, r, s, err)
			return
		}

		title := "Lost items"
		if kind == model.ItemTypeFound {
			title = "Found items"
		}
		p := &itemsPage{
			PageData:   PageData{Title: title, Session: s},
			Kind:       kind,
			List:       list,
			Filter:     f,
			Categories: model.Categories,
			Locations:  model.Locations,
		}
		if list.HasPrev {
			p.PrevURL = pageURL(r.URL, list.Page-1)
		}
		if list.HasNext {
			p.NextURL = pageURL(r.URL, list.Page+1)
		}
		srv.Templates.Render(w, http.StatusOK, "items.html", p)
	}
}

func itemFilterFromQuery(kind string, q url.Values) model.ItemFilter {
	f := model.ItemFilter{
		Type:     kind,
		Category: q.Get("category"),
		Location: q.Get("location"),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if kind == model.ItemTypeLost {
		f.Urgency = q.Get("urgency")
		f.HasReward = q.Get("has_reward") == "true" || q.Get("has_reward") == "on"
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	return f
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}

type itemDetailPage struct {
	PageData
	Item     *model.Item
	IsOwner  bool
	CanClaim bool
	Message  string
	Contact  string
}

func (srv *Server) renderItem(w http.ResponseWriter, status int, s *session.Session, item *model.Item, p *itemDetailPage) {
	p.PageData.Title = item.Title
	p.PageData.Session = s
	p.Item = item
	p.IsOwner = item.OwnedBy(s.UserID())
	p.CanClaim = s.Active() && !p.IsOwner && item.Claimable()
	if p.Contact == "" {
		p.Contact = model.ContactEmail
	}
	srv.Templates.Render(w, status, "item_detail.html", p)
}

// ItemDetailPage handles GET /item/{id}.
func (srv *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	item, err := srv.api(s).GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		srv.fail(w, r, s, err)
		return
	}
	p := &itemDetailPage{}
	if r.URL.Query().Has("posted") {
		p.Notice = "Your item has been posted. Other users can now see it and contact you."
	}
	srv.renderItem(w, http.StatusOK, s, item, p)
}

// ClaimSubmit handles POST /item/{id}/claim. A successful claim opens its
// conversation.
func (srv *Server) ClaimSubmit(w http.ResponseWriter, r *http.Request, s *session.Session) {
	item, err := srv.api(s).GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		srv.fail(w, r, s, err)
		return
	}

	message := r.FormValue("message")
	contact := r.FormValue("contact_preference")
	claim, err := srv.workflow(s).Submit(r.Context(), item, message, contact)
	if err != nil {
		a := describeError(err)
		if a.Kind == client.KindUnauthorized {
			srv.toLogin(w, r)
			return
		}
		status := http.StatusBadRequest
		switch {
		case workflow.IsConflict(err):
			status = http.StatusConflict
		case a.Banner:
			status = http.StatusBadGateway
		}
		srv.renderItem(w, status, s, item, &itemDetailPage{
			PageData: PageData{Error: a.Message, Fields: a.Fields},
			Message:  message,
			Contact:  contact,
		})
		return
	}
	http.Redirect(w, r, "/messages/"+url.PathEscape(claim.ID), http.StatusSeeOther)
}
