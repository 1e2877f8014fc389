package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crash-dash/internal/ui/assets"
)

// MountRoutes registers the dashboard pages on r.
func MountRoutes(r chi.Router, h *Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Get("/", h.Home)
	r.Post("/refresh", h.Refresh)
	r.Get("/export.csv", h.ExportCSV)
}
