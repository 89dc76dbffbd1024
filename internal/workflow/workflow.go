// Package workflow turns claims into conversations and enforces the claim
// lifecycle (pending, approved, completed or rejected) before anything
// reaches the backend.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
)

// API is the slice of the backend client the workflow drives.
type API interface {
	SubmitClaim(ctx context.Context, draft model.ClaimDraft) (*model.ClaimRequest, error)
	UpdateClaim(ctx context.Context, id, status string) (*model.ClaimRequest, error)
	AdminUpdateClaim(ctx context.Context, id, status, adminNotes string) error
	UpdateItemStatus(ctx context.Context, id, status string) (*model.Item, error)
	ListConversations(ctx context.Context) ([]model.ConversationSummary, error)
	GetConversation(ctx context.Context, claimRequestID string) (*model.Conversation, error)
	SendMessage(ctx context.Context, claimRequestID, body string) (*model.Message, error)
	MarkConversationRead(ctx context.Context, claimRequestID string) error
}

// Actor identifies who drives the workflow.
type Actor struct {
	SessionID string
	UserID    string
	Admin     bool
}

// Workflow runs claim and conversation operations for one actor.
type Workflow struct {
	api   API
	actor Actor
	guard *SendGuard

	// markTimeout bounds the background read-marking call.
	markTimeout time.Duration
	pending     sync.WaitGroup
}

// New creates a workflow. guard is shared across requests so repeated
// submits of the same message are refused.
func New(api API, actor Actor, guard *SendGuard) *Workflow {
	if guard == nil {
		guard = NewSendGuard()
	}
	return &Workflow{api: api, actor: actor, guard: guard, markTimeout: 10 * time.Second}
}

// Submit files a claim on item. Owners cannot claim their own items and only
// active items accept claims.
func (w *Workflow) Submit(ctx context.Context, item *model.Item, message, contactPreference string) (*model.ClaimRequest, error) {
	if item.OwnedBy(w.actor.UserID) {
		return nil, client.NewValidationError("", "You cannot claim your own item", nil)
	}
	if !item.Claimable() {
		return nil, &StateError{Action: "claim", Subject: "item", Status: item.Status}
	}

	claim, err := w.api.SubmitClaim(ctx, model.ClaimDraft{
		ItemID:            item.ID,
		Message:           strings.TrimSpace(message),
		ContactPreference: contactPreference,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("claim submitted", "user", w.actor.UserID, "item", item.ID, "claim", claim.ID)
	return claim, nil
}

// Open fetches a conversation for display and marks it read in the
// background. A failed mark never hides the messages.
func (w *Workflow) Open(ctx context.Context, claimID string) (*Thread, error) {
	t, err := w.snapshot(ctx, claimID)
	if err != nil {
		return nil, err
	}
	w.markReadAsync(ctx, claimID)
	return t, nil
}

// Refresh refetches a conversation without touching its read state.
func (w *Workflow) Refresh(ctx context.Context, claimID string) (*Thread, error) {
	return w.snapshot(ctx, claimID)
}

// MarkRead zeroes the actor's unread counter. Calling it again is harmless.
func (w *Workflow) MarkRead(ctx context.Context, claimID string) error {
	return w.api.MarkConversationRead(ctx, claimID)
}

// Wait blocks until background read-marking has finished.
func (w *Workflow) Wait() {
	w.pending.Wait()
}

func (w *Workflow) markReadAsync(ctx context.Context, claimID string) {
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.markTimeout)
		defer cancel()
		if err := w.api.MarkConversationRead(ctx, claimID); err != nil {
			slog.Warn("failed to mark conversation read", "claim", claimID, "user", w.actor.UserID, "error", err)
		}
	}()
}

// Send appends a message to the conversation and returns the refreshed
// thread. The body is trimmed; empty or over-long bodies never reach the
// backend.
func (w *Workflow) Send(ctx context.Context, claimID, body string) (*Thread, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, client.NewValidationError("message", "Message cannot be empty", nil)
	}
	if n := utf8.RuneCountInString(body); n > model.MaxMessageLength {
		return nil, client.NewValidationError("message",
			fmt.Sprintf("Message is too long (%d of %d characters)", n, model.MaxMessageLength), nil)
	}

	release, ok := w.guard.TryAcquire(w.actor.SessionID + "/" + claimID)
	if !ok {
		return nil, &client.Error{Kind: client.KindValidation, Field: "message", Message: ErrSendInFlight.Error(), Err: ErrSendInFlight}
	}
	defer release()

	before, err := w.api.GetConversation(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !CanMessage(before.ClaimRequest.Status) {
		return nil, &StateError{Action: "send message", Status: before.ClaimRequest.Status}
	}

	msg, err := w.api.SendMessage(ctx, claimID, body)
	if err != nil {
		return nil, err
	}

	t, err := w.snapshot(ctx, claimID)
	if err != nil {
		// The message is stored; show what we had plus the new tail.
		slog.Warn("refetch after send failed", "claim", claimID, "error", err)
		before.Messages = appendMissing(before.Messages, *msg)
		return newThread(before, w.actor.UserID), nil
	}
	t.Messages = appendMissing(t.Messages, *msg)
	return t, nil
}

// Approve accepts a pending claim and marks its item claimed.
func (w *Workflow) Approve(ctx context.Context, claimID string) (*Thread, error) {
	return w.settle(ctx, claimID, "approve", model.ClaimStatusApproved, model.ItemStatusClaimed)
}

// Reject declines a pending claim. The conversation is closed to new messages.
func (w *Workflow) Reject(ctx context.Context, claimID string) (*Thread, error) {
	return w.settle(ctx, claimID, "reject", model.ClaimStatusRejected, "")
}

// Complete records the handover of an approved claim and resolves its item.
func (w *Workflow) Complete(ctx context.Context, claimID string) (*Thread, error) {
	return w.settle(ctx, claimID, "complete", model.ClaimStatusCompleted, model.ItemStatusResolved)
}

// settle moves a claim to status and, for the owner, its item to itemStatus.
// The two backend writes are separate: when the claim already has status but
// the item lags behind, only the item update is repeated.
func (w *Workflow) settle(ctx context.Context, claimID, action, status, itemStatus string) (*Thread, error) {
	t, err := w.snapshot(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !t.ItemPending(status, itemStatus) {
		if err := w.decide(ctx, t, claimID, action, status); err != nil {
			return nil, err
		}
	} else {
		slog.Info("resuming item update", "user", w.actor.UserID, "claim", claimID, "item", t.Item.ID, "status", itemStatus)
	}

	if itemStatus != "" && t.IsOwner {
		if _, err := w.api.UpdateItemStatus(ctx, t.Item.ID, itemStatus); err != nil {
			return nil, fmt.Errorf("claim %s but item was not marked %s: %w", status, itemStatus, err)
		}
	}
	return w.snapshot(ctx, claimID)
}

// decide moves a claim to status after checking ownership and the current
// status against the snapshot t. Admins override through the admin endpoint.
func (w *Workflow) decide(ctx context.Context, t *Thread, claimID, action, status string) error {
	if !t.IsOwner && !w.actor.Admin {
		return client.NewValidationError("", "Only the item owner can "+action+" this claim", nil)
	}
	if err := checkTransition(action, t.Status(), status); err != nil {
		return err
	}

	var err error
	if t.IsOwner {
		_, err = w.api.UpdateClaim(ctx, claimID, status)
	} else {
		err = w.api.AdminUpdateClaim(ctx, claimID, status, "")
	}
	if err != nil {
		return err
	}
	slog.Info("claim "+status, "user", w.actor.UserID, "claim", claimID, "admin_override", !t.IsOwner)
	return nil
}

func (w *Workflow) snapshot(ctx context.Context, claimID string) (*Thread, error) {
	conv, err := w.api.GetConversation(ctx, claimID)
	if err != nil {
		return nil, err
	}
	return newThread(conv, w.actor.UserID), nil
}

// Inbox lists the actor's conversations, filtered and newest first.
func (w *Workflow) Inbox(ctx context.Context, search, filter string) ([]model.ConversationSummary, error) {
	convs, err := w.api.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	convs = model.FilterConversations(convs, search, filter)
	sortInbox(convs)
	return convs, nil
}

// UnreadTotal sums the actor's unread counters across conversations.
func (w *Workflow) UnreadTotal(ctx context.Context) (int, error) {
	convs, err := w.api.ListConversations(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range convs {
		n += c.UnreadCount
	}
	return n, nil
}

// IsConflict reports whether err is a claim state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStateConflict)
}
