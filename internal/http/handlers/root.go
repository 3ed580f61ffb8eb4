package handlers

import (
	"net/http"
	"time"
)

// RootHandler serves the unauthenticated service info and liveness routes.
type RootHandler struct{}

// NewRootHandler creates the root endpoint handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// Register wires the handler into a ServeMux.
func (h *RootHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /status", h.handleStatus)
}

func (h *RootHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"application": "Krabbel",
		"description": "Smart Note-Taking Application",
		"status":      "running",
		"timestamp":   time.Now().UTC(),
		"endpoints": map[string]string{
			"health":   "/api/health/status",
			"login":    "/api/auth/login",
			"register": "/api/auth/register",
			"notes":    "/api/notes",
		},
	})
}

func (h *RootHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "running"})
}
