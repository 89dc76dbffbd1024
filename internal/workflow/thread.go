package workflow

import (
	"cmp"
	"slices"

	"github.com/erazemk/lostfound/internal/model"
)

// Thread is a conversation snapshot seen by one participant.
type Thread struct {
	model.Conversation
	Viewer      string
	IsOwner     bool
	Counterpart *model.User
}

func newThread(conv *model.Conversation, viewer string) *Thread {
	sortMessages(conv.Messages)
	t := &Thread{
		Conversation: *conv,
		Viewer:       viewer,
		IsOwner:      conv.Item.OwnedBy(viewer),
	}
	t.Counterpart = conv.Counterpart(viewer)
	return t
}

// Status returns the claim status.
func (t *Thread) Status() string {
	return t.ClaimRequest.Status
}

// CanDecide reports whether the viewer may approve or reject the claim.
func (t *Thread) CanDecide() bool {
	return t.IsOwner && t.Status() == model.ClaimStatusPending
}

// CanComplete reports whether the viewer may mark the handover done.
func (t *Thread) CanComplete() bool {
	return t.IsOwner && t.Status() == model.ClaimStatusApproved
}

// ItemPending reports whether the claim already has status while its item
// has not reached itemStatus, as left by an interrupted approval or handover.
func (t *Thread) ItemPending(status, itemStatus string) bool {
	return t.IsOwner && itemStatus != "" && t.Status() == status && t.Item.Status != itemStatus
}

// NeedsItemUpdate reports whether the owner must retry the item update of an
// approved or completed claim.
func (t *Thread) NeedsItemUpdate() bool {
	return t.ItemPending(model.ClaimStatusApproved, model.ItemStatusClaimed) ||
		t.ItemPending(model.ClaimStatusCompleted, model.ItemStatusResolved)
}

// CanSend reports whether the conversation accepts messages.
func (t *Thread) CanSend() bool {
	return CanMessage(t.Status())
}

// Mine reports whether m was sent by the viewer.
func (t *Thread) Mine(m model.Message) bool {
	return m.SenderID == t.Viewer
}

// sortMessages orders messages by creation time. Ties keep backend order.
func sortMessages(msgs []model.Message) {
	slices.SortStableFunc(msgs, func(a, b model.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// appendMissing adds m at the tail unless the snapshot already has it.
func appendMissing(msgs []model.Message, m model.Message) []model.Message {
	if slices.ContainsFunc(msgs, func(x model.Message) bool { return x.ID == m.ID }) {
		return msgs
	}
	msgs = append(msgs, m)
	sortMessages(msgs)
	return msgs
}

// sortInbox puts the most recently active conversations first.
func sortInbox(convs []model.ConversationSummary) {
	slices.SortStableFunc(convs, func(a, b model.ConversationSummary) int {
		var ta, tb int64
		if a.LatestMessage != nil {
			ta = a.LatestMessage.Timestamp.UnixNano()
		}
		if b.LatestMessage != nil {
			tb = b.LatestMessage.Timestamp.UnixNano()
		}
		return cmp.Compare(tb, ta)
	})
}
