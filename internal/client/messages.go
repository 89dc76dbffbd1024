package client

import (
	"context"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
)

// ListConversations returns the caller's conversation list.
func (c *Client) ListConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	var res struct {
		Conversations []model.ConversationSummary `json:"conversations"`
		Total         int                         `json:"total"`
	}
	if err := c.do(ctx, call{op: "list_conversations", method: http.MethodGet, path: "/messages/conversations", out: &res}); err != nil {
		return nil, err
	}
	if res.Conversations == nil {
		res.Conversations = []model.ConversationSummary{}
	}
	return res.Conversations, nil
}

// GetConversation returns the full snapshot of one conversation.
func (c *Client) GetConversation(ctx context.Context, claimRequestID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := c.do(ctx, call{
		op:     "get_conversation",
		method: http.MethodGet,
		path:   "/messages/conversations/" + pathID(claimRequestID),
		out:    &conv,
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// SendMessage appends a message to a conversation.
func (c *Client) SendMessage(ctx context.Context, claimRequestID, body string) (*model.Message, error) {
	var msg model.Message
	err := c.do(ctx, call{
		op:     "send_message",
		method: http.MethodPost,
		path:   "/messages/conversations/" + pathID(claimRequestID),
		body:   map[string]string{"message": body},
		out:    &msg,
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkConversationRead zeroes the caller's unread counter.
func (c *Client) MarkConversationRead(ctx context.Context, claimRequestID string) error {
	return c.do(ctx, call{
		op:     "mark_conversation_read",
		method: http.MethodPost,
		path:   "/messages/conversations/" + pathID(claimRequestID) + "/read",
	})
}
