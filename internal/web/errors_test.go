package web

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/workflow"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   string
		banner bool
	}{
		{
			name: "item no longer claimable",
			err:  &workflow.StateError{Action: "claim", Subject: "item", Status: "claimed"},
			want: "This item is no longer open for claims (it is claimed)",
		},
		{
			name: "claim already decided",
			err:  &workflow.StateError{Action: "approve", Status: "rejected"},
			want: "This claim has already been decided",
		},
		{
			name: "wrapped item conflict",
			err:  fmt.Errorf("posting claim: %w", &workflow.StateError{Action: "claim", Subject: "item", Status: "archived"}),
			want: "it is archived",
		},
		{
			name:   "backend down",
			err:    &client.Error{Kind: client.KindServer, Status: 503},
			want:   "ran into a problem",
			banner: true,
		},
		{
			name:   "network",
			err:    fmt.Errorf("listing items: %w", &client.Error{Kind: client.KindNetwork}),
			want:   "can't be reached",
			banner: true,
		},
		{
			name:   "unexpected",
			err:    errors.New("boom"),
			want:   "Something went wrong",
			banner: true,
		},
		{
			name: "field validation",
			err:  client.NewValidationError("message", "too short", nil),
			want: "Please check the highlighted fields.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := describeError(tt.err)
			if !strings.Contains(a.Message, tt.want) {
				t.Errorf("message = %q, want it to contain %q", a.Message, tt.want)
			}
			if a.Banner != tt.banner {
				t.Errorf("banner = %v, want %v", a.Banner, tt.banner)
			}
		})
	}
}
