package api

import (
	"net/http"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/workflow"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(backend *client.Client, sessions SessionLoader, guard *workflow.SendGuard) http.Handler {
	mux := http.NewServeMux()

	convHandler := &ConversationsHandler{Backend: backend, Guard: guard}
	authMW := AuthMiddleware(sessions)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Chat polling (session required).
	mux.Handle("GET /api/unread", authMW(http.HandlerFunc(convHandler.Unread)))
	mux.Handle("GET /api/conversations/{claimRequestId}", authMW(http.HandlerFunc(convHandler.Get)))
	mux.Handle("POST /api/conversations/{claimRequestId}/messages", authMW(http.HandlerFunc(convHandler.Send)))
	mux.Handle("POST /api/conversations/{claimRequestId}/read", authMW(http.HandlerFunc(convHandler.MarkRead)))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})

	return mux
}
