package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"crash-dash/internal/credentials"
	"crash-dash/internal/domain"
)

func TestValidateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		table   string
		wantErr bool
	}{
		{table: DefaultTable},
		{table: "crash"},
		{table: "dataset.crash_2025"},
		{table: "my-project.ds.t"},
		{table: "", wantErr: true},
		{table: "a.b.c.d", wantErr: true},
		{table: "ds.crash`; DROP TABLE x", wantErr: true},
		{table: "ds..crash", wantErr: true},
		{table: "ds.cr ash", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			t.Parallel()
			err := ValidateTable(tt.table)
			if tt.wantErr {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestQueryText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SELECT *\nFROM `cmpe255-451700.crash2025.crash`\nLIMIT 1000", BigQueryText(DefaultTable, DefaultRowLimit))
	assert.Equal(t, "SELECT * FROM 'data/crash.parquet' LIMIT 10", DuckDBText("data/crash.parquet", 10))
	assert.Equal(t, "SELECT * FROM 'o''brien.csv' LIMIT 5", DuckDBText("o'brien.csv", 5))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantAuth bool
	}{
		{name: "unauthorized", err: &googleapi.Error{Code: 401, Message: "Request had invalid authentication credentials"}, wantAuth: true},
		{name: "forbidden", err: fmt.Errorf("run job: %w", &googleapi.Error{Code: 403}), wantAuth: true},
		{name: "token exchange", err: &auth.Error{Response: &http.Response{StatusCode: 400}, Err: errors.New("invalid_grant")}, wantAuth: true},
		{name: "legacy oauth2 message", err: errors.New(`oauth2: "invalid_grant" "Invalid JWT Signature."`), wantAuth: true},
		{name: "server error", err: &googleapi.Error{Code: 500}},
		{name: "network", err: errors.New("dial tcp: lookup bigquery.googleapis.com: no such host")},
		{name: "timeout", err: context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.err)
			if tt.wantAuth {
				var ae *domain.AuthenticationFailedError
				require.ErrorAs(t, got, &ae)
			} else {
				var su *domain.SourceUnavailableError
				require.ErrorAs(t, got, &su)
			}
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, Classify(nil))

	already := domain.ErrSourceUnavailable(nil, "down")
	assert.Same(t, already, Classify(already))
}

func TestNewBigQuerySource_RejectsMissingCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := NewBigQuerySource(ctx, credentials.ServiceAccount{}, DefaultTable, DefaultRowLimit)
	var ae *domain.AuthenticationFailedError
	require.ErrorAs(t, err, &ae)

	_, err = NewBigQuerySource(ctx, credentials.ServiceAccount{ProjectID: "p"}, DefaultTable, DefaultRowLimit)
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, err.Error(), "incomplete")

	_, err = NewBigQuerySource(ctx, credentials.ServiceAccount{ProjectID: "p"}, "bad table", DefaultRowLimit)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = NewBigQuerySource(ctx, credentials.ServiceAccount{ProjectID: "p"}, DefaultTable, 0)
	require.ErrorAs(t, err, &ve)
}

func TestInitialize_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Initialize(context.Background(), Config{Kind: "postgres"}, credentials.ServiceAccount{},
		slog.New(slog.DiscardHandler))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestInitialize_BigQueryWithoutCredentials(t *testing.T) {
	t.Parallel()

	_, err := Initialize(context.Background(), Config{Kind: KindBigQuery}, credentials.ServiceAccount{},
		slog.New(slog.DiscardHandler))
	var ae *domain.AuthenticationFailedError
	require.ErrorAs(t, err, &ae)
}

func TestDuckDBSource_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewDuckDBSource(filepath.Join(t.TempDir(), "nope.parquet"), 10)
	var su *domain.SourceUnavailableError
	require.ErrorAs(t, err, &su)
}

func TestDuckDBSource_Fetch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "crash.csv")
	csv := "CRASHID,AGERANGE,DAYNUMBER\n" +
		"1,0-18,1\n" +
		"2,0-18,2\n" +
		"3,19-30,2\n" +
		"4,,3\n" +
		"5,31-45,1\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	src, err := Initialize(context.Background(), Config{Kind: KindDuckDB, LocalPath: path, RowLimit: 3},
		credentials.ServiceAccount{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	assert.Contains(t, src.Query(), "LIMIT 3")

	table, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CRASHID", "AGERANGE", "DAYNUMBER"}, table.Columns())
	require.Equal(t, 3, table.Len())

	age, _ := table.ColumnIndex(domain.ColumnAgeRange)
	day, _ := table.ColumnIndex(domain.ColumnDayNumber)
	assert.Equal(t, "0-18", table.Value(0, age))
	assert.Equal(t, int64(2), table.Value(1, day))
	assert.Equal(t, "19-30", table.Value(2, age))
}
