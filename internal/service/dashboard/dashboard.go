// Package dashboard assembles everything one page view needs: the cached base
// table, filter controls, the filtered rows, and the age-range distribution.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"crash-dash/internal/domain"
	"crash-dash/internal/engine"
)

// Filter describes one sidebar selector.
type Filter struct {
	Column string // table column constrained by the selector
	Label  string // selector label
	Param  string // query parameter carrying the selection
}

// Filters are the dashboard's selectors in display order.
var Filters = []Filter{
	{Column: domain.ColumnAgeRange, Label: "Age Range", Param: "age_range"},
	{Column: domain.ColumnDayNumber, Label: "Day Number", Param: "day"},
}

// ChartParam is the query parameter carrying the chart type.
const ChartParam = "chart"

// ChartColumn is the column summarized by the chart.
const ChartColumn = domain.ColumnAgeRange

// Request carries the raw, untrusted parameters of one page view.
// Keys of Selections are Filter.Param values; a missing key selects All,
// while a present empty value selects the empty string.
type Request struct {
	Selections map[string]string
	Chart      string
}

// Control is a rendered selector: its options and the current choice.
type Control struct {
	Filter
	Options  []domain.Value
	Selected domain.Value
}

// View is the complete, render-ready state of the dashboard.
type View struct {
	// Err is the classified fetch failure, if any. When set, the view holds
	// no data and only the error banner and the no-data notice are shown.
	Err error

	Controls     []Control
	Selection    domain.FilterSelection
	Chart        domain.ChartType
	ChartColumn  string
	Distribution domain.Distribution // over the base table
	Filtered     *domain.Table       // base table narrowed by Selection
	BaseRows     int
	FetchedAt    time.Time

	// Warnings lists selections that were not among the offered options and
	// fell back to All.
	Warnings []string
}

// HasData reports whether there is anything to chart or tabulate.
func (v *View) HasData() bool {
	return v.Err == nil && v.BaseRows > 0
}

// Service builds dashboard views from the cached table.
type Service struct {
	tables domain.TableProvider
	logger *slog.Logger
}

// NewService creates a dashboard service over tables.
func NewService(tables domain.TableProvider, logger *slog.Logger) *Service {
	return &Service{tables: tables, logger: logger}
}

type fetchTimer interface {
	FetchedAt() time.Time
}

// Build runs the page pipeline: load the base table, build the selectors,
// parse the request against the offered options, filter, and summarize.
// Fetch failures are reported through View.Err. A returned error means the
// table does not carry a column the dashboard depends on.
func (s *Service) Build(ctx context.Context, req Request) (*View, error) {
	view := &View{
		Chart:       domain.ParseChartType(req.Chart),
		ChartColumn: ChartColumn,
		Selection:   domain.FilterSelection{},
		Filtered:    domain.EmptyTable(),
	}

	base, err := s.tables.Get(ctx)
	if ft, ok := s.tables.(fetchTimer); ok {
		view.FetchedAt = ft.FetchedAt()
	}
	if err != nil {
		view.Err = err
		s.logger.Warn("dashboard has no data", "error", err)
		return view, nil
	}
	view.BaseRows = base.Len()
	if base.IsEmpty() {
		return view, nil
	}

	controls, sel, warnings, err := s.parseSelection(base, req.Selections)
	if err != nil {
		return nil, err
	}
	view.Controls = controls
	view.Selection = sel
	view.Warnings = warnings

	filtered, err := engine.Apply(base, sel)
	if err != nil {
		return nil, fmt.Errorf("filter rows: %w", err)
	}
	view.Filtered = filtered

	dist, err := engine.Distribution(base, ChartColumn)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", ChartColumn, err)
	}
	view.Distribution = dist

	s.logger.Debug("dashboard built",
		"base_rows", base.Len(), "filtered_rows", filtered.Len(),
		"chart", string(view.Chart), "warnings", len(warnings))
	return view, nil
}

// Refresh drops the cached table and fetches it again.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.tables.Refresh(ctx)
	if err != nil {
		s.logger.Warn("refresh failed", "error", err)
		return err
	}
	s.logger.Info("data refreshed")
	return nil
}

// Distribution summarizes any column of the base table.
func (s *Service) Distribution(ctx context.Context, column string) (domain.Distribution, error) {
	base, err := s.tables.Get(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Distribution(base, column)
}

// Controls returns the selectors with their option lists and All selected.
func (s *Service) Controls(ctx context.Context) ([]Control, error) {
	base, err := s.tables.Get(ctx)
	if err != nil {
		return nil, err
	}
	if base.IsEmpty() {
		return nil, nil
	}
	controls, _, _, err := s.parseSelection(base, nil)
	return controls, err
}

func (s *Service) parseSelection(base *domain.Table, raw map[string]string) ([]Control, domain.FilterSelection, []string, error) {
	controls := make([]Control, 0, len(Filters))
	sel := make(domain.FilterSelection, len(Filters))
	var warnings []string

	for _, f := range Filters {
		options, err := engine.FilterDomain(base, f.Column)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("options for %s: %w", f.Label, err)
		}
		selected, ok := domain.All, true
		if v, present := raw[f.Param]; present {
			selected, ok = Match(options, v)
		}
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s %q is not an available option; showing All", f.Label, raw[f.Param]))
		}
		sel[f.Column] = selected
		controls = append(controls, Control{Filter: f, Options: options, Selected: selected})
	}
	return controls, sel, warnings, nil
}

// Match finds the option whose display form equals raw. The "All" label
// selects domain.All, as does an empty raw when no option is the empty
// string. ok is false when raw names no option, in which case All is
// returned.
func Match(options []domain.Value, raw string) (domain.Value, bool) {
	if raw == domain.AllLabel {
		return domain.All, true
	}
	for _, o := range options {
		if domain.IsAll(o) {
			continue
		}
		if domain.FormatValue(o) == raw {
			return o, true
		}
	}
	return domain.All, raw == ""
}

// ErrorMessage renders a fetch failure for the error banner.
func ErrorMessage(err error) string {
	return "Error fetching data: " + err.Error()
}

// IsAuthFailure reports whether err means the warehouse rejected the
// credentials.
func IsAuthFailure(err error) bool {
	var ae *domain.AuthenticationFailedError
	return errors.As(err, &ae)
}

// ParseRequest reads the filter and chart parameters of a page request.
func ParseRequest(q url.Values) Request {
	req := Request{
		Selections: make(map[string]string, len(Filters)),
		Chart:      q.Get(ChartParam),
	}
	for _, f := range Filters {
		if q.Has(f.Param) {
			req.Selections[f.Param] = q.Get(f.Param)
		}
	}
	return req
}

// Values is the inverse of ParseRequest. It carries the current selection
// through links and redirects.
func (r Request) Values() url.Values {
	q := url.Values{}
	for _, f := range Filters {
		if v, ok := r.Selections[f.Param]; ok {
			q.Set(f.Param, v)
		}
	}
	if r.Chart != "" {
		q.Set(ChartParam, r.Chart)
	}
	return q
}
