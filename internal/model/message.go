package model

import (
	"strings"
	"time"
)

// MaxMessageLength is the longest message body the backend accepts, in characters.
const MaxMessageLength = 1000

// Message is one entry in a conversation.
type Message struct {
	ID             string    `json:"id"`
	ClaimRequestID string    `json:"claim_request_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"message"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
	SenderName     string    `json:"sender_name,omitempty"`
}

// Conversation is the full snapshot of the thread bound to one claim request.
type Conversation struct {
	ClaimRequest ClaimRequest `json:"claim_request"`
	Item         Item         `json:"item"`
	Messages     []Message    `json:"messages"`
	Participants []User       `json:"participants"`
}

// UnreadFor counts the messages addressed to userID that are still unread.
func (c *Conversation) UnreadFor(userID string) int {
	n := 0
	for _, m := range c.Messages {
		if m.SenderID != userID && !m.IsRead {
			n++
		}
	}
	return n
}

// Counterpart returns the participant that is not userID.
func (c *Conversation) Counterpart(userID string) *User {
	for i := range c.Participants {
		if c.Participants[i].ID != userID {
			return &c.Participants[i]
		}
	}
	return nil
}

// Participant is a minimal identity in a conversation listing.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LatestMessage previews the newest message of a conversation.
type LatestMessage struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsFromMe  bool      `json:"is_from_me"`
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	ClaimRequestID   string         `json:"claim_request_id"`
	ItemTitle        string         `json:"item_title"`
	ItemType         string         `json:"item_type"`
	Status           string         `json:"status"`
	UnreadCount      int            `json:"unread_count"`
	OtherParticipant Participant    `json:"other_participant"`
	LatestMessage    *LatestMessage `json:"latest_message,omitempty"`
}

// Conversation list filters.
const (
	ConversationFilterAll      = "all"
	ConversationFilterUnread   = "unread"
	ConversationFilterPending  = "pending"
	ConversationFilterApproved = "approved"
)

// FilterConversations applies the list page's search box and filter tabs.
// The search matches the item title or the other participant's name,
// case-insensitively.
func FilterConversations(convs []ConversationSummary, search, filter string) []ConversationSummary {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.ItemTitle), search) &&
			!strings.Contains(strings.ToLower(c.OtherParticipant.Name), search) {
			continue
		}
		switch filter {
		case ConversationFilterUnread:
			if c.UnreadCount == 0 {
				continue
			}
		case ConversationFilterPending:
			if c.Status != ClaimStatusPending {
				continue
			}
		case ConversationFilterApproved:
			if c.Status != ClaimStatusApproved {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
