package ui

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crash-dash/internal/domain"
	"crash-dash/internal/service/dashboard"
	"crash-dash/internal/testutil"
)

func newTestRouter(t *testing.T, provider domain.TableProvider) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	r := chi.NewRouter()
	MountRoutes(r, NewHandler(dashboard.NewService(provider, logger), logger))
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHome_RendersDashboard(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})
	rec := get(t, h, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	for _, want := range []string{
		"Traffic Accident Analysis Dashboard",
		"Filters",
		"Age Range",
		"Day Number",
		"Chart Type",
		"Bar Chart",
		"Line Chart",
		"Accident Distribution by Age Range",
		"Filtered Data",
		"<svg",
		`class="bar"`,
		"c-5",
		"5 of 5 rows",
		"Reload data",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, noDataMessage)
}

func TestHome_AppliesSelection(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})
	rec := get(t, h, "/?age_range=0-18&day=2&chart=line")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "1 of 5 rows")
	assert.Contains(t, body, "c-2")
	assert.NotContains(t, body, "c-1<")
	assert.Contains(t, body, "<polyline")
	assert.Contains(t, body, `<option value="0-18" selected>0-18</option>`)
	assert.Contains(t, body, "export.csv?age_range=0-18&amp;chart=line&amp;day=2")
}

func TestHome_UnknownSelectionWarns(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})
	rec := get(t, h, "/?day=9")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "is not an available option")
	assert.Contains(t, body, "5 of 5 rows")
}

func TestHome_NoMatchesKeepsHeaders(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})
	rec := get(t, h, "/?age_range=31-45&day=2")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "0 of 5 rows")
	for _, col := range []string{"CRASHID", "AGERANGE", "DAYNUMBER"} {
		assert.Contains(t, body, "<th>"+col+"</th>")
	}
	assert.NotContains(t, body, "<td>c-")
	assert.NotContains(t, body, "is not an available option")
}

func TestHome_EmptyStringOption(t *testing.T) {
	t.Parallel()

	table := domain.NewTable(
		[]string{domain.ColumnAgeRange, domain.ColumnDayNumber},
		[][]domain.Value{{"", int64(1)}, {"0-18", int64(1)}, {"0-18", int64(2)}},
	)
	h := newTestRouter(t, &testutil.MockTableProvider{Table: table})

	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, `<option value="">(empty)</option>`)

	body = get(t, h, "/?age_range=").Body.String()
	assert.Contains(t, body, `<option value="" selected>(empty)</option>`)
	assert.Contains(t, body, "1 of 3 rows")
}

func TestHome_FetchFailure(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &testutil.MockTableProvider{
		Err: domain.ErrAuthenticationFailed(nil, "warehouse rejected credentials"),
	})
	rec := get(t, h, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error fetching data: warehouse rejected credentials")
	assert.Contains(t, body, noDataMessage)
	assert.NotContains(t, body, "<svg")
	assert.NotContains(t, body, "Filtered Data")
	assert.NotContains(t, body, `name="age_range"`)
	assert.Contains(t, body, "Reload data")
}

func TestHome_MissingColumnIsServerError(t *testing.T) {
	t.Parallel()

	table := domain.NewTable([]string{"CRASHID"}, [][]domain.Value{{"c-1"}})
	h := newTestRouter(t, &testutil.MockTableProvider{Table: table})
	rec := get(t, h, "/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unexpected Table Layout")
}

func TestRefresh_RedirectsWithSelection(t *testing.T) {
	t.Parallel()

	provider := &testutil.MockTableProvider{
		Err: domain.ErrSourceUnavailable(nil, "down"),
		RefreshFn: func(context.Context) (*domain.Table, error) {
			return testutil.CrashTable(), nil
		},
	}
	h := newTestRouter(t, provider)

	form := url.Values{"age_range": {"0-18"}, "chart": {"line"}}
	req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?age_range=0-18&chart=line", rec.Header().Get("Location"))
	assert.Equal(t, 1, provider.Refreshes)

	rec = get(t, h, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "Filtered Data")
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})
	rec := get(t, h, "/export.csv?day=1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "crash-filtered.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"CRASHID", "AGERANGE", "DAYNUMBER"},
		{"c-1", "0-18", "1"},
		{"c-5", "31-45", "1"},
	}, records)
}

func TestExportCSV_FetchFailure(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &testutil.MockTableProvider{Err: domain.ErrSourceUnavailable(nil, "down")})
	rec := get(t, h, "/export.csv")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data Unavailable")
}

func TestStaticStylesheet(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})
	href := uiStylesheetHref()
	assert.True(t, strings.HasPrefix(href, "/static/css/app.css?v="))

	rec := get(t, h, href)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".app-shell")
}

func TestDistributionChart(t *testing.T) {
	t.Parallel()

	d := domain.Distribution{{Category: "0-18", Count: 7}, {Category: "19-30", Count: 3}}

	var bar strings.Builder
	require.NoError(t, distributionChart(d, domain.ChartBar, "Age Range", "Count").Render(&bar))
	assert.Equal(t, 2, strings.Count(bar.String(), "<rect"))
	assert.Contains(t, bar.String(), "0-18: 7")

	var line strings.Builder
	require.NoError(t, distributionChart(d, domain.ChartLine, "Age Range", "Count").Render(&line))
	assert.Equal(t, 1, strings.Count(line.String(), "<polyline"))
	assert.Equal(t, 2, strings.Count(line.String(), "<circle"))

	var empty strings.Builder
	require.NoError(t, distributionChart(nil, domain.ChartBar, "Age Range", "Count").Render(&empty))
	assert.Contains(t, empty.String(), "No age range values to chart.")
}

func TestNiceMax(t *testing.T) {
	t.Parallel()

	for n, want := range map[int]int{0: 4, 1: 4, 4: 4, 5: 8, 7: 8, 9: 20, 21: 40, 150: 200, 999: 2000} {
		assert.Equal(t, want, niceMax(n), n)
	}
}
