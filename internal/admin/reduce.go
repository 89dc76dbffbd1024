package admin

import (
	"slices"

	"github.com/erazemk/lostfound/internal/model"
)

// Rows is the console's cached page of each queue.
type Rows struct {
	Items  []model.Item
	Claims []model.ClaimRequest
	Users  []model.User
}

// Event is the outcome of one admin mutation.
type Event struct {
	Op     Op
	ID     string
	Action string // moderation action or new claim status
	Note   string
	Err    error
}

// Op names an admin mutation.
type Op int

const (
	OpModerate Op = iota + 1
	OpDelete
	OpUpdateClaim
)

func (o Op) String() string {
	switch o {
	case OpModerate:
		return "moderate"
	case OpDelete:
		return "delete"
	case OpUpdateClaim:
		return "update_claim"
	}
	return "unknown"
}

// Reduce applies a mutation outcome to rows. A failed event returns rows
// unchanged; a successful one returns patched copies and never modifies the
// input slices.
func Reduce(r Rows, ev Event) Rows {
	if ev.Err != nil {
		return r
	}

	switch ev.Op {
	case OpModerate:
		status, ok := moderatedStatus(ev.Action)
		if !ok {
			return r
		}
		r.Items = patchItem(r.Items, ev.ID, func(it *model.Item) {
			it.Status = status
			if ev.Action == model.ModerateApprove {
				it.Flagged = false
				it.FlagReason = ""
			}
		})
	case OpDelete:
		r.Items = slices.DeleteFunc(slices.Clone(r.Items), func(it model.Item) bool { return it.ID == ev.ID })
	case OpUpdateClaim:
		i := slices.IndexFunc(r.Claims, func(c model.ClaimRequest) bool { return c.ID == ev.ID })
		if i < 0 {
			return r
		}
		r.Claims = slices.Clone(r.Claims)
		r.Claims[i].Status = ev.Action
		if ev.Note != "" {
			r.Claims[i].AdminNotes = ev.Note
		}
	}
	return r
}

// moderatedStatus is the item status the backend sets for each action.
func moderatedStatus(action string) (string, bool) {
	switch action {
	case model.ModerateApprove:
		return model.ItemStatusActive, true
	case model.ModerateReject, model.ModerateArchive:
		return model.ItemStatusArchived, true
	}
	return "", false
}

func patchItem(items []model.Item, id string, fn func(*model.Item)) []model.Item {
	i := slices.IndexFunc(items, func(it model.Item) bool { return it.ID == id })
	if i < 0 {
		return items
	}
	items = slices.Clone(items)
	fn(&items[i])
	return items
}
