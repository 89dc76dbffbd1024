package model

import "testing"

func TestUnreadFor(t *testing.T) {
	conv := Conversation{
		Messages: []Message{
			{SenderID: "a", IsRead: false},
			{SenderID: "b", IsRead: false},
			{SenderID: "b", IsRead: true},
			{SenderID: "b", IsRead: false},
		},
	}

	if got := conv.UnreadFor("a"); got != 2 {
		t.Errorf("UnreadFor(a) = %d, want 2", got)
	}
	if got := conv.UnreadFor("b"); got != 1 {
		t.Errorf("UnreadFor(b) = %d, want 1", got)
	}
}

func TestCounterpart(t *testing.T) {
	conv := Conversation{Participants: []User{{ID: "a", FirstName: "Ann"}, {ID: "b", FirstName: "Bob"}}}

	if got := conv.Counterpart("a"); got == nil || got.ID != "b" {
		t.Errorf("Counterpart(a) = %+v, want b", got)
	}
	if got := conv.Counterpart("b"); got == nil || got.ID != "a" {
		t.Errorf("Counterpart(b) = %+v, want a", got)
	}
}

func TestFilterConversations(t *testing.T) {
	convs := []ConversationSummary{
		{ClaimRequestID: "1", ItemTitle: "Red Backpack", Status: ClaimStatusPending, OtherParticipant: Participant{Name: "Jane Smith"}},
		{ClaimRequestID: "2", ItemTitle: "Gold Ring", Status: ClaimStatusApproved, UnreadCount: 3, OtherParticipant: Participant{Name: "Mike Brown"}},
		{ClaimRequestID: "3", ItemTitle: "Black Wallet", Status: ClaimStatusRejected, OtherParticipant: Participant{Name: "Sarah Wilson"}},
	}

	tests := []struct {
		search string
		filter string
		want   []string
	}{
		{"", ConversationFilterAll, []string{"1", "2", "3"}},
		{"", ConversationFilterUnread, []string{"2"}},
		{"", ConversationFilterPending, []string{"1"}},
		{"", ConversationFilterApproved, []string{"2"}},
		{"backpack", ConversationFilterAll, []string{"1"}},
		{"SARAH", ConversationFilterAll, []string{"3"}},
		{"ring", ConversationFilterPending, nil},
	}

	for _, tt := range tests {
		got := FilterConversations(convs, tt.search, tt.filter)
		if len(got) != len(tt.want) {
			t.Errorf("FilterConversations(%q, %q) returned %d rows, want %d", tt.search, tt.filter, len(got), len(tt.want))
			continue
		}
		for i, c := range got {
			if c.ClaimRequestID != tt.want[i] {
				t.Errorf("FilterConversations(%q, %q)[%d] = %s, want %s", tt.search, tt.filter, i, c.ClaimRequestID, tt.want[i])
			}
		}
	}
}
