// Package api serves the dashboard data as JSON under /api/v1.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crash-dash/internal/domain"
	"crash-dash/internal/service/dashboard"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// FilterOptions lists the choices of one selector.
type FilterOptions struct {
	Column  string `json:"column"`
	Param   string `json:"param"`
	Label   string `json:"label"`
	Options []any  `json:"options"`
}

// OptionsResponse is returned by GET /options.
type OptionsResponse struct {
	Filters    []FilterOptions `json:"filters"`
	ChartTypes []string        `json:"chart_types"`
}

// Bucket is one category count.
type Bucket struct {
	Category any `json:"category"`
	Count    int `json:"count"`
}

// DistributionResponse is returned by GET /distribution.
type DistributionResponse struct {
	Column  string   `json:"column"`
	Buckets []Bucket `json:"buckets"`
	Total   int      `json:"total"`
}

// RowsResponse is returned by GET /rows.
type RowsResponse struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
	Warnings []string `json:"warnings,omitempty"`
}

// Handler implements the JSON endpoints.
type Handler struct {
	dashboard *dashboard.Service
	logger    *slog.Logger
}

// NewHandler creates a JSON API handler.
func NewHandler(svc *dashboard.Service, logger *slog.Logger) *Handler {
	return &Handler{dashboard: svc, logger: logger}
}

// MountRoutes registers the endpoints on r.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/options", h.Options)
	r.Get("/distribution", h.Distribution)
	r.Get("/rows", h.Rows)
}

// Options returns the filter domains and chart types.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	controls, err := h.dashboard.Controls(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewOptionsResponse(controls))
}

// Distribution returns the category counts of a column over the whole table.
// The column defaults to AGERANGE.
func (h *Handler) Distribution(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		column = dashboard.ChartColumn
	}

	dist, err := h.dashboard.Distribution(r.Context(), column)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewDistributionResponse(column, dist))
}

// Rows returns the filtered rows for the selection in the query string.
func (h *Handler) Rows(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.Build(r.Context(), dashboard.ParseRequest(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if view.Err != nil {
		h.writeError(w, r, view.Err)
		return
	}

	writeJSON(w, http.StatusOK, NewRowsResponse(view))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("api request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.logger.Warn("api request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, Error{Code: status, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewOptionsResponse converts selectors to their JSON form.
func NewOptionsResponse(controls []dashboard.Control) OptionsResponse {
	resp := OptionsResponse{
		Filters:    make([]FilterOptions, 0, len(controls)),
		ChartTypes: make([]string, 0, len(domain.ChartTypes)),
	}
	for _, c := range controls {
		opts := make([]any, len(c.Options))
		for i, o := range c.Options {
			opts[i] = jsonValue(o)
		}
		resp.Filters = append(resp.Filters, FilterOptions{
			Column: c.Column, Param: c.Param, Label: c.Label, Options: opts,
		})
	}
	for _, ct := range domain.ChartTypes {
		resp.ChartTypes = append(resp.ChartTypes, string(ct))
	}
	return resp
}

// NewDistributionResponse converts a distribution of column to its JSON form.
func NewDistributionResponse(column string, dist domain.Distribution) DistributionResponse {
	buckets := make([]Bucket, len(dist))
	for i, b := range dist {
		buckets[i] = Bucket{Category: jsonValue(b.Category), Count: b.Count}
	}
	return DistributionResponse{Column: column, Buckets: buckets, Total: dist.Total()}
}

// NewRowsResponse converts the filtered rows of view to their JSON form.
func NewRowsResponse(view *dashboard.View) RowsResponse {
	t := view.Filtered
	rows := make([][]any, t.Len())
	for i := range rows {
		values := t.Values(i)
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = jsonValue(v)
		}
		rows[i] = row
	}
	return RowsResponse{
		Columns:  t.Columns(),
		Rows:     rows,
		RowCount: t.Len(),
		Warnings: view.Warnings,
	}
}

// jsonValue maps the All sentinel to its label; data values encode as-is.
func jsonValue(v domain.Value) any {
	if domain.IsAll(v) {
		return domain.AllLabel
	}
	return v
}
