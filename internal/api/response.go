package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/workflow"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(target)
}

// backendError maps a failed operation to a JSON error. Backend outages are
// reported as 502 so the page can tell them apart from its own bugs.
func backendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case workflow.IsConflict(err):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrSendInFlight):
		status = http.StatusTooManyRequests
	case errors.Is(err, client.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, client.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, client.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, client.ErrNetwork), errors.Is(err, client.ErrServer):
		status = http.StatusBadGateway
	}

	msg := "internal error"
	var cerr *client.Error
	if errors.As(err, &cerr) && cerr.Message != "" {
		msg = cerr.Message
	}
	if workflow.IsConflict(err) {
		msg = err.Error()
	}
	if status == http.StatusInternalServerError {
		slog.Error("api request failed", "error", err)
	}
	jsonResponse(w, status, map[string]string{"error": msg, "kind": client.KindOf(err).String()})
}
