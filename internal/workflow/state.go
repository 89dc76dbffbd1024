package workflow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
)

// ErrStateConflict marks an action the claim's current status does not allow.
// Every StateError matches both it and client.ErrValidation.
var ErrStateConflict = errors.New("claim state conflict")

// ErrSendInFlight is returned, wrapped in a validation error, while a
// previous send to the same conversation by the same session has not finished.
var ErrSendInFlight = errors.New("a message is already being sent")

// StateError reports an action attempted from the wrong status. Subject
// defaults to "claim".
type StateError struct {
	Action  string
	Subject string
	Status  string
}

func (e *StateError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "claim"
	}
	return fmt.Sprintf("cannot %s: %s is %s", e.Action, subject, e.Status)
}

func (e *StateError) Unwrap() []error {
	return []error{ErrStateConflict, client.ErrValidation}
}

// transitions lists the statuses reachable from each claim status.
var transitions = map[string][]string{
	model.ClaimStatusPending:  {model.ClaimStatusApproved, model.ClaimStatusRejected},
	model.ClaimStatusApproved: {model.ClaimStatusCompleted},
}

// CanTransition reports whether a claim may move from one status to another.
func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

// CanMessage reports whether a conversation in the given claim status
// accepts new messages.
func CanMessage(status string) bool {
	return status != model.ClaimStatusRejected
}

func checkTransition(action, from, to string) error {
	if !CanTransition(from, to) {
		return &StateError{Action: action, Status: from}
	}
	return nil
}
