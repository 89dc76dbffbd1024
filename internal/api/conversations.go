package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
	"github.com/erazemk/lostfound/internal/workflow"
)

// ConversationsHandler serves the chat page's polling endpoints.
type ConversationsHandler struct {
	Backend *client.Client
	Guard   *workflow.SendGuard
}

type messageView struct {
	model.Message
	Mine bool `json:"mine"`
}

type threadResponse struct {
	ClaimRequest model.ClaimRequest `json:"claim_request"`
	Item         model.Item         `json:"item"`
	Messages     []messageView      `json:"messages"`
	Counterpart  *model.User        `json:"counterpart,omitempty"`
	IsOwner      bool               `json:"is_owner"`
	CanSend      bool               `json:"can_send"`
	CanDecide    bool               `json:"can_decide"`
	CanComplete  bool               `json:"can_complete"`
}

func newThreadResponse(t *workflow.Thread) threadResponse {
	msgs := make([]messageView, 0, len(t.Messages))
	for _, m := range t.Messages {
		msgs = append(msgs, messageView{Message: m, Mine: t.Mine(m)})
	}
	return threadResponse{
		ClaimRequest: t.ClaimRequest,
		Item:         t.Item,
		Messages:     msgs,
		Counterpart:  t.Counterpart,
		IsOwner:      t.IsOwner,
		CanSend:      t.CanSend(),
		CanDecide:    t.CanDecide(),
		CanComplete:  t.CanComplete(),
	}
}

func (h *ConversationsHandler) workflow(s *session.Session) *workflow.Workflow {
	return workflow.New(h.Backend.As(s), workflow.Actor{
		SessionID: s.ID,
		UserID:    s.UserID(),
		Admin:     s.IsAdmin(),
	}, h.Guard)
}

// Get returns a fresh conversation snapshot. With ?read=1 the viewer's
// unread counter is zeroed too; a failure there is logged and the snapshot
// is still returned.
func (h *ConversationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := GetSession(r.Context())
	id := r.PathValue("claimRequestId")
	wf := h.workflow(s)

	t, err := wf.Refresh(r.Context(), id)
	if err != nil {
		backendError(w, err)
		return
	}
	if r.URL.Query().Get("read") == "1" && t.UnreadFor(s.UserID()) > 0 {
		if err := wf.MarkRead(r.Context(), id); err != nil {
			slog.Warn("failed to mark conversation read", "claim", id, "user", s.UserID(), "error", err)
		}
	}
	jsonResponse(w, http.StatusOK, newThreadResponse(t))
}

// Send posts a message and returns the refreshed snapshot.
func (h *ConversationsHandler) Send(w http.ResponseWriter, r *http.Request) {
	s := GetSession(r.Context())
	id := r.PathValue("claimRequestId")

	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.workflow(s).Send(r.Context(), id, req.Message)
	if err != nil {
		backendError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, newThreadResponse(t))
}

// MarkRead zeroes the viewer's unread counter for one conversation.
func (h *ConversationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	s := GetSession(r.Context())
	if err := h.workflow(s).MarkRead(r.Context(), r.PathValue("claimRequestId")); err != nil {
		backendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unread returns the viewer's unread total for the header badge.
func (h *ConversationsHandler) Unread(w http.ResponseWriter, r *http.Request) {
	n, err := h.workflow(GetSession(r.Context())).UnreadTotal(r.Context())
	if err != nil {
		backendError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"unread": n})
}
