package web

import (
	"context"
	"net/http"
	"net/url"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
	"github.com/erazemk/lostfound/internal/workflow"
)

var chatNotices = map[string]string{
	"approved":  "Claim approved. The item is now marked as claimed.",
	"rejected":  "Claim rejected. This conversation is now closed.",
	"completed": "Handover recorded. The item is marked as resolved.",
	"claimed":   "Your claim was sent. You can talk to the owner here.",
}

// MessagesPage handles GET /messages.
func (srv *Server) MessagesPage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	search := r.URL.Query().Get("search")
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = model.ConversationFilterAll
	}

	convs, err := srv.workflow(s).Inbox(r.Context(), search, filter)
	if err != nil {
		srv.fail(w, r, s, err)
		return
	}

	srv.Templates.Render(w, http.StatusOK, "messages.html", &struct {
		PageData
		Conversations []model.ConversationSummary
		Search        string
		Filter        string
		Filters       []string
	}{
		PageData:      PageData{Title: "Messages", Session: s},
		Conversations: convs,
		Search:        search,
		Filter:        filter,
		Filters: []string{
			model.ConversationFilterAll,
			model.ConversationFilterUnread,
			model.ConversationFilterPending,
			model.ConversationFilterApproved,
		},
	})
}

type chatPage struct {
	PageData
	Thread       *workflow.Thread
	Draft        string
	MaxLength    int
	PollInterval int64
}

func (srv *Server) renderChat(w http.ResponseWriter, status int, s *session.Session, t *workflow.Thread, p *chatPage) {
	p.PageData.Title = t.Item.Title
	p.PageData.Session = s
	p.Thread = t
	p.MaxLength = model.MaxMessageLength
	p.PollInterval = srv.PollInterval.Milliseconds()
	srv.Templates.Render(w, status, "chat.html", p)
}

// ChatPage handles GET /messages/{claimRequestId}. The conversation is marked
// read in the background; a failure there never hides the messages.
func (srv *Server) ChatPage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	wf := srv.workflow(s)
	t, err := wf.Open(r.Context(), r.PathValue("claimRequestId"))
	if err != nil {
		srv.fail(w, r, s, err)
		return
	}
	srv.track(wf)

	srv.renderChat(w, http.StatusOK, s, t, &chatPage{
		PageData: PageData{Notice: chatNotices[r.URL.Query().Get("notice")]},
	})
}

// ChatSend handles POST /messages/{claimRequestId}.
func (srv *Server) ChatSend(w http.ResponseWriter, r *http.Request, s *session.Session) {
	id := r.PathValue("claimRequestId")
	body := r.FormValue("message")

	if _, err := srv.workflow(s).Send(r.Context(), id, body); err != nil {
		srv.chatFailed(w, r, s, id, body, err)
		return
	}
	http.Redirect(w, r, "/messages/"+url.PathEscape(id)+"#latest", http.StatusSeeOther)
}

// ChatApprove handles POST /messages/{claimRequestId}/approve.
func (srv *Server) ChatApprove(w http.ResponseWriter, r *http.Request, s *session.Session) {
	srv.chatDecision(w, r, s, "approved", (*workflow.Workflow).Approve)
}

// ChatReject handles POST /messages/{claimRequestId}/reject.
func (srv *Server) ChatReject(w http.ResponseWriter, r *http.Request, s *session.Session) {
	srv.chatDecision(w, r, s, "rejected", (*workflow.Workflow).Reject)
}

// ChatComplete handles POST /messages/{claimRequestId}/complete.
func (srv *Server) ChatComplete(w http.ResponseWriter, r *http.Request, s *session.Session) {
	srv.chatDecision(w, r, s, "completed", (*workflow.Workflow).Complete)
}

type decision func(*workflow.Workflow, context.Context, string) (*workflow.Thread, error)

func (srv *Server) chatDecision(w http.ResponseWriter, r *http.Request, s *session.Session, notice string, decide decision) {
	id := r.PathValue("claimRequestId")
	if _, err := decide(srv.workflow(s), r.Context(), id); err != nil {
		srv.chatFailed(w, r, s, id, "", err)
		return
	}
	http.Redirect(w, r, "/messages/"+url.PathEscape(id)+"?notice="+notice, http.StatusSeeOther)
}

// chatFailed re-renders the conversation with the failure explained and the
// unsent draft kept.
func (srv *Server) chatFailed(w http.ResponseWriter, r *http.Request, s *session.Session, id, draft string, err error) {
	a := describeError(err)
	if a.Kind == client.KindUnauthorized || a.Kind == client.KindNotFound {
		srv.fail(w, r, s, err)
		return
	}

	t, rerr := srv.workflow(s).Refresh(r.Context(), id)
	if rerr != nil {
		srv.fail(w, r, s, err)
		return
	}

	status := http.StatusBadRequest
	switch {
	case workflow.IsConflict(err):
		status = http.StatusConflict
	case a.Banner:
		status = http.StatusBadGateway
	}
	srv.renderChat(w, status, s, t, &chatPage{
		PageData: PageData{Error: a.Message, Fields: a.Fields},
		Draft:    draft,
	})
}
