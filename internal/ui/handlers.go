package ui

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"

	"crash-dash/internal/domain"
	"crash-dash/internal/service/dashboard"
)

const csvFilename = "crash-filtered.csv"

// Home renders the dashboard for the filter and chart selection in the URL.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	req := dashboard.ParseRequest(r.URL.Query())
	view, err := h.Dashboard.Build(r.Context(), req)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, dashboardPage(view, req))
}

// Refresh drops the cached table, fetches it again, and redirects back to
// the dashboard with the selection preserved. A failed fetch shows up as the
// error banner on the next render.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form submission."))
		return
	}
	_ = h.Dashboard.Refresh(r.Context())

	target := "/"
	if q := dashboard.ParseRequest(r.PostForm).Values().Encode(); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ExportCSV streams the filtered rows as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	view, err := h.Dashboard.Build(r.Context(), dashboard.ParseRequest(r.URL.Query()))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	if view.Err != nil {
		h.renderServiceError(w, r, view.Err)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(view.Filtered.Columns()); err != nil {
		renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed writing CSV header."))
		return
	}
	for i := 0; i < view.Filtered.Len(); i++ {
		values := view.Filtered.Values(i)
		record := make([]string, len(values))
		for j, v := range values {
			record[j] = domain.FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed writing CSV rows."))
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed finalizing CSV."))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var authFailed *domain.AuthenticationFailedError
	var unavailable *domain.SourceUnavailableError
	var invalidColumn *domain.InvalidColumnError
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &authFailed):
		status = http.StatusUnauthorized
		title = "Authentication Failed"
		message = dashboard.ErrorMessage(err)
	case errors.As(err, &unavailable):
		status = http.StatusServiceUnavailable
		title = "Data Unavailable"
		message = dashboard.ErrorMessage(err)
	case errors.As(err, &invalidColumn):
		title = "Unexpected Table Layout"
		message = invalidColumn.Error()
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	}

	h.Logger.Error("dashboard request failed", "path", r.URL.Path, "status", status, "error", err)
	renderHTML(w, status, errorPage(title, message))
}
