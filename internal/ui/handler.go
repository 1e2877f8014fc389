// Package ui renders the dashboard as server-side HTML.
package ui

import (
	"log/slog"
	"net/http"

	gomponents "maragu.dev/gomponents"

	"crash-dash/internal/service/dashboard"
)

// Handler serves the dashboard pages.
type Handler struct {
	Dashboard *dashboard.Service
	Logger    *slog.Logger
}

// NewHandler creates a UI handler.
func NewHandler(svc *dashboard.Service, logger *slog.Logger) *Handler {
	return &Handler{Dashboard: svc, Logger: logger}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}
