package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crash-dash/internal/api"
	"crash-dash/internal/domain"
	"crash-dash/internal/service/dashboard"
	"crash-dash/internal/testutil"
)

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

// runCLI executes dashctl with args against provider and returns stdout and
// stderr.
func runCLI(t *testing.T, provider domain.TableProvider, args ...string) (string, string, error) {
	t.Helper()
	closer := &closeCounter{}
	load := func(context.Context, *rootOptions) (*dashboard.Service, io.Closer, error) {
		return dashboard.NewService(provider, slog.New(slog.DiscardHandler)), closer, nil
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(load)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func crashProvider() *testutil.MockTableProvider {
	return &testutil.MockTableProvider{Table: testutil.CrashTable()}
}

func TestOptionsCmd(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, crashProvider(), "options")
	require.NoError(t, err)
	assert.Contains(t, out, "Age Range")
	assert.Contains(t, out, "--age-range")
	assert.Contains(t, out, "All, 0-18, 19-30, 31-45")
	assert.Contains(t, out, "All, 1, 2, 3")
	assert.Contains(t, out, "bar, line")

	out, _, err = runCLI(t, crashProvider(), "options", "-o", "json")
	require.NoError(t, err)
	var resp api.OptionsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Filters, 2)
	assert.Equal(t, "DAYNUMBER", resp.Filters[1].Column)
}

func TestSummaryCmd(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, crashProvider(), "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "AGERANGE")
	assert.Contains(t, out, "0-18")
	assert.Contains(t, out, "50.0%")

	out, _, err = runCLI(t, crashProvider(), "summary", "--column", "DAYNUMBER", "-o", "json")
	require.NoError(t, err)
	var resp api.DistributionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, api.Bucket{Category: 1.0, Count: 2}, resp.Buckets[0])

	_, _, err = runCLI(t, crashProvider(), "summary", "--column", "WEATHER")
	require.Error(t, err)
	var invalid *domain.InvalidColumnError
	assert.ErrorAs(t, err, &invalid)
}

func TestRowsCmd(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, crashProvider(), "rows", "--age-range", "0-18")
	require.NoError(t, err)
	assert.Contains(t, out, "c-1")
	assert.Contains(t, out, "c-2")
	assert.NotContains(t, out, "c-3")
	assert.Contains(t, out, "2 of 2 rows shown (5 before filtering)")

	out, _, err = runCLI(t, crashProvider(), "rows", "--day", "1", "--limit", "1", "-o", "json")
	require.NoError(t, err)
	var resp api.RowsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.RowCount)
	assert.Len(t, resp.Rows, 1)

	out, errOut, err := runCLI(t, crashProvider(), "rows", "--day", "42")
	require.NoError(t, err)
	assert.Contains(t, errOut, "warning:")
	assert.Contains(t, out, "5 of 5 rows shown")
}

func TestRowsCmd_FetchFailure(t *testing.T) {
	t.Parallel()

	provider := &testutil.MockTableProvider{Err: domain.ErrSourceUnavailable(errors.New("timeout"), "warehouse query failed")}
	_, _, err := runCLI(t, provider, "rows")
	require.Error(t, err)
	var unavailable *domain.SourceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestRowsCmd_NegativeLimit(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, crashProvider(), "rows", "--limit", "-1")
	require.Error(t, err)
}

func TestOutputFlag_RejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, crashProvider(), "version", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, crashProvider(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dashctl version dev (commit: none)\n", out)

	out, _, err = runCLI(t, crashProvider(), "version", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"dev","commit":"none"}`, out)
}

func TestCommandsCloseSource(t *testing.T) {
	t.Parallel()

	closer := &closeCounter{}
	load := func(context.Context, *rootOptions) (*dashboard.Service, io.Closer, error) {
		return dashboard.NewService(crashProvider(), slog.New(slog.DiscardHandler)), closer, nil
	}
	cmd := newRootCmd(load)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"summary"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, 1, closer.n)
}

func TestCompletionCmd(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, crashProvider(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "dashctl")

	_, _, err = runCLI(t, crashProvider(), "completion", "tcsh")
	require.Error(t, err)
}
