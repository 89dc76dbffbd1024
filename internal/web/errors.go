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
	"github.com/erazemk/lostfound/internal/workflow"
)

// Alert is the user-visible form of a failed operation.
type Alert struct {
	Message string
	// Fields maps form field names to inline messages.
	Fields map[string]string
	// Banner marks transient failures shown as a dismissible banner; the
	// user retries by hand.
	Banner bool
	Kind   client.Kind
}

// describeError converts any failure into text for the viewer. Every view
// goes through it so no error is dropped silently.
func describeError(err error) Alert {
	a := Alert{Kind: client.KindOf(err), Banner: client.IsTransient(err)}

	var serr *workflow.StateError
	switch {
	case errors.As(err, &serr) && serr.Subject == "item":
		a.Message = "This item is no longer open for claims (it is " + serr.Status + ")."
		return a
	case workflow.IsConflict(err):
		a.Message = "This claim has already been decided: " + err.Error() + ". Refresh to see its current state."
		return a
	case errors.Is(err, workflow.ErrSendInFlight):
		a.Message = "Your previous message is still being sent."
		return a
	case errors.Is(err, admin.ErrNotConfirmed):
		a.Message = "Please confirm the deletion. This cannot be undone."
		return a
	}

	switch a.Kind {
	case client.KindValidation:
		a.Message = "Please check the highlighted fields."
		var verr *model.ValidationError
		var cerr *client.Error
		switch {
		case errors.As(err, &verr):
			a.Fields = make(map[string]string, len(verr.Fields))
			for _, f := range verr.Fields {
				a.Fields[f.Field] = f.Message
			}
		case errors.As(err, &cerr):
			if cerr.Field != "" {
				a.Fields = map[string]string{cerr.Field: cerr.Message}
			} else if cerr.Message != "" {
				a.Message = cerr.Message
			}
		}
	case client.KindUnauthorized:
		a.Message = "Your session has expired. Please sign in again."
	case client.KindNotFound:
		a.Message = "We couldn't find what you were looking for. It may have been removed."
	case client.KindNetwork:
		a.Message = "The Lost & Found service can't be reached right now. Check your connection and try again."
	case client.KindServer:
		a.Message = "The Lost & Found service ran into a problem. Please try again in a moment."
	default:
		slog.Error("unexpected error", "error", err)
		a.Message = "Something went wrong. Please try again."
		a.Banner = true
	}
	return a
}

// fail renders a page-level failure: expired credentials go back to the
// login page, missing resources get the not-found view and everything else
// gets the error view with a banner.
func (srv *Server) fail(w http.ResponseWriter, r *http.Request, s *session.Session, err error) {
	a := describeError(err)
	switch a.Kind {
	case client.KindUnauthorized:
		srv.toLogin(w, r)
		return
	case client.KindNotFound:
		srv.Templates.Render(w, http.StatusNotFound, "error.html", &errorPage{
			PageData: PageData{Title: "Not found", Session: s},
			Heading:  "Not found",
			Alert:    a,
		})
		return
	}

	status := http.StatusBadGateway
	switch {
	case !a.Banner:
		status = http.StatusBadRequest
	case a.Kind == 0:
		status = http.StatusInternalServerError
	}
	srv.Templates.Render(w, status, "error.html", &errorPage{
		PageData: PageData{Title: "Something went wrong", Session: s},
		Heading:  "Something went wrong",
		Alert:    a,
	})
}

// toLogin drops the browser's session cookie and sends it to the login page.
func (srv *Server) toLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, srv.Sessions.ExpiredCookie())
	target := "/login?expired=1"
	if r.Method == http.MethodGet {
		target += "&next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type errorPage struct {
	PageData
	Heading string
	Alert   Alert
}
