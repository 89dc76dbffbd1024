package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed backend call.
type Kind int

// Failure kinds.
const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindNetwork
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the normalized failure of every client operation.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Field   string
	Err     error
}

// Sentinels for errors.Is.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrServer       = &Error{Kind: KindServer}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the failure kind of err, or 0 if err is not a client error.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return 0
}

// kindForStatus maps a backend status code to a failure kind. 403 is a
// permission refusal, not an expired credential, so it does not clear the
// session.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindServer
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// NewValidationError builds a local validation failure that never reached the network.
func NewValidationError(field, message string, cause error) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message, Err: cause}
}
