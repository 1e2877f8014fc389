package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crash-dash/internal/cache"
	"crash-dash/internal/domain"
	"crash-dash/internal/testutil"
)

func newService(t *testing.T, tables domain.TableProvider) *Service {
	t.Helper()
	return NewService(tables, slog.New(slog.DiscardHandler))
}

func TestBuild_NoSelection(t *testing.T) {
	t.Parallel()

	svc := newService(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})

	view, err := svc.Build(context.Background(), Request{})
	require.NoError(t, err)

	assert.True(t, view.HasData())
	assert.Equal(t, domain.ChartBar, view.Chart)
	assert.Equal(t, 5, view.BaseRows)
	assert.Equal(t, 5, view.Filtered.Len())
	assert.Empty(t, view.Warnings)

	require.Len(t, view.Controls, 2)
	assert.Equal(t, "Age Range", view.Controls[0].Label)
	assert.Equal(t, []domain.Value{domain.All, "0-18", "19-30", "31-45"}, view.Controls[0].Options)
	assert.Equal(t, []domain.Value{domain.All, int64(1), int64(2), int64(3)}, view.Controls[1].Options)
	assert.True(t, domain.IsAll(view.Controls[0].Selected))

	assert.Equal(t, domain.Distribution{
		{Category: "0-18", Count: 2},
		{Category: "19-30", Count: 1},
		{Category: "31-45", Count: 1},
	}, view.Distribution)
}

func TestBuild_FiltersTableButNotChart(t *testing.T) {
	t.Parallel()

	svc := newService(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})

	view, err := svc.Build(context.Background(), Request{
		Selections: map[string]string{"age_range": "0-18", "day": "2"},
		Chart:      "Line Chart",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ChartLine, view.Chart)
	assert.Equal(t, domain.FilterSelection{domain.ColumnAgeRange: "0-18", domain.ColumnDayNumber: int64(2)}, view.Selection)
	require.Equal(t, 1, view.Filtered.Len())
	assert.Equal(t, "c-2", view.Filtered.Row(0)["CRASHID"])

	// The chart keeps summarizing every row.
	assert.Equal(t, 4, view.Distribution.Total())
}

func TestBuild_UnknownSelectionFallsBackToAll(t *testing.T) {
	t.Parallel()

	svc := newService(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})

	view, err := svc.Build(context.Background(), Request{
		Selections: map[string]string{"age_range": "99-120", "day": "1"},
	})
	require.NoError(t, err)

	assert.True(t, domain.IsAll(view.Selection[domain.ColumnAgeRange]))
	assert.Equal(t, int64(1), view.Selection[domain.ColumnDayNumber])
	assert.Equal(t, 2, view.Filtered.Len())
	require.Len(t, view.Warnings, 1)
	assert.Contains(t, view.Warnings[0], "99-120")
}

func TestBuild_NoMatches(t *testing.T) {
	t.Parallel()

	svc := newService(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})

	view, err := svc.Build(context.Background(), Request{
		Selections: map[string]string{"age_range": "31-45", "day": "2"},
	})
	require.NoError(t, err)

	assert.True(t, view.HasData())
	assert.True(t, view.Filtered.IsEmpty())
	assert.Equal(t, testutil.CrashTable().Columns(), view.Filtered.Columns())
}

func TestBuild_FetchFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantAuth bool
	}{
		{name: "auth", err: domain.ErrAuthenticationFailed(nil, "bad key"), wantAuth: true},
		{name: "unavailable", err: domain.ErrSourceUnavailable(nil, "network down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newService(t, &testutil.MockTableProvider{Err: tt.err})

			view, err := svc.Build(context.Background(), Request{Selections: map[string]string{"age_range": "0-18"}})
			require.NoError(t, err)

			assert.False(t, view.HasData())
			assert.Equal(t, tt.err, view.Err)
			assert.Equal(t, tt.wantAuth, IsAuthFailure(view.Err))
			assert.Empty(t, view.Controls)
			assert.Empty(t, view.Distribution)
			assert.True(t, view.Filtered.IsEmpty())
		})
	}
}

func TestBuild_MissingFilterColumn(t *testing.T) {
	t.Parallel()

	table := domain.NewTable([]string{"CRASHID"}, [][]domain.Value{{"c-1"}})
	svc := newService(t, &testutil.MockTableProvider{Table: table})

	_, err := svc.Build(context.Background(), Request{})
	var ic *domain.InvalidColumnError
	require.ErrorAs(t, err, &ic)
	assert.Equal(t, domain.ColumnAgeRange, ic.Column)
}

func TestBuild_ReportsFetchTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rc := cache.New(testutil.StaticSource(testutil.CrashTable()), nil, cache.WithClock(func() time.Time { return at }))
	svc := newService(t, rc)

	view, err := svc.Build(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, at, view.FetchedAt)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	provider := &testutil.MockTableProvider{
		Err: domain.ErrSourceUnavailable(nil, "down"),
		RefreshFn: func(context.Context) (*domain.Table, error) {
			return testutil.CrashTable(), nil
		},
	}
	svc := newService(t, provider)

	view, err := svc.Build(context.Background(), Request{})
	require.NoError(t, err)
	require.False(t, view.HasData())

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, provider.Refreshes)

	view, err = svc.Build(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, view.HasData())
}

func TestDistributionAndControls(t *testing.T) {
	t.Parallel()

	svc := newService(t, &testutil.MockTableProvider{Table: testutil.CrashTable()})

	dist, err := svc.Distribution(context.Background(), domain.ColumnDayNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.Distribution{
		{Category: int64(1), Count: 2},
		{Category: int64(2), Count: 2},
		{Category: int64(3), Count: 1},
	}, dist)

	_, err = svc.Distribution(context.Background(), "WEATHER")
	var ic *domain.InvalidColumnError
	require.ErrorAs(t, err, &ic)

	controls, err := svc.Controls(context.Background())
	require.NoError(t, err)
	require.Len(t, controls, 2)
	assert.Equal(t, "day", controls[1].Param)
}

func TestMatch(t *testing.T) {
	t.Parallel()

	options := []domain.Value{domain.All, "0-18", int64(2), 1.5}

	tests := []struct {
		raw    string
		want   domain.Value
		wantOK bool
	}{
		{raw: "", want: domain.All, wantOK: true},
		{raw: "All", want: domain.All, wantOK: true},
		{raw: "0-18", want: "0-18", wantOK: true},
		{raw: "2", want: int64(2), wantOK: true},
		{raw: "1.5", want: 1.5, wantOK: true},
		{raw: "02", want: domain.All, wantOK: false},
	}
	for _, tt := range tests {
		got, ok := Match(options, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
	}

	got, ok := Match([]domain.Value{domain.All, "", "0-18"}, "")
	assert.True(t, ok)
	assert.Equal(t, "", got)
}

func TestBuild_EmptyStringOption(t *testing.T) {
	t.Parallel()

	table := domain.NewTable(
		[]string{domain.ColumnAgeRange, domain.ColumnDayNumber},
		[][]domain.Value{{"", int64(1)}, {"0-18", int64(1)}, {"All", int64(2)}},
	)
	svc := newService(t, &testutil.MockTableProvider{Table: table})

	view, err := svc.Build(context.Background(), ParseRequest(url.Values{"age_range": {""}}))
	require.NoError(t, err)
	assert.Equal(t, []domain.Value{domain.All, "", "0-18", "All"}, view.Controls[0].Options)
	assert.Equal(t, "", view.Controls[0].Selected)
	assert.Empty(t, view.Warnings)
	assert.Equal(t, 1, view.Filtered.Len())

	view, err = svc.Build(context.Background(), ParseRequest(url.Values{"age_range": {"All"}}))
	require.NoError(t, err)
	assert.True(t, domain.IsAll(view.Controls[0].Selected), "the All label always means no constraint")
	assert.Equal(t, 3, view.Filtered.Len())

	view, err = svc.Build(context.Background(), ParseRequest(url.Values{}))
	require.NoError(t, err)
	assert.True(t, domain.IsAll(view.Controls[0].Selected))
	assert.Equal(t, 3, view.Filtered.Len())
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := domain.ErrSourceUnavailable(errors.New("dial tcp: timeout"), "warehouse query failed")
	assert.Equal(t, "Error fetching data: warehouse query failed: dial tcp: timeout", ErrorMessage(err))
}

func TestBuild_EmptyTable(t *testing.T) {
	t.Parallel()

	svc := newService(t, &testutil.MockTableProvider{Table: domain.EmptyTable()})

	view, err := svc.Build(context.Background(), Request{})
	require.NoError(t, err)
	assert.NoError(t, view.Err)
	assert.False(t, view.HasData())
	assert.Empty(t, view.Controls)
}

func TestParseRequest(t *testing.T) {
	t.Parallel()

	q := url.Values{"age_range": {"19-30"}, "day": {""}, "chart": {"line"}, "other": {"x"}}
	req := ParseRequest(q)
	assert.Equal(t, Request{Selections: map[string]string{"age_range": "19-30", "day": ""}, Chart: "line"}, req)
	assert.Equal(t, "age_range=19-30&chart=line&day=", req.Values().Encode())

	assert.Empty(t, ParseRequest(url.Values{}).Values())
}
