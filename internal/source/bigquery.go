package source

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"crash-dash/internal/credentials"
	"crash-dash/internal/domain"
)

var _ domain.DataSource = (*BigQuerySource)(nil)

// BigQuerySource runs the fixed crash query against BigQuery.
type BigQuerySource struct {
	client *bigquery.Client
	query  string
}

// NewBigQuerySource authenticates with the service account and prepares the
// fixed query over table. No query is run until Fetch.
func NewBigQuerySource(ctx context.Context, creds credentials.ServiceAccount, table string, limit int) (*BigQuerySource, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if creds.IsZero() {
		return nil, domain.ErrAuthenticationFailed(nil, "no warehouse credentials configured")
	}
	if creds.ProjectID == "" || creds.PrivateKey == "" || creds.ClientEmail == "" {
		return nil, domain.ErrAuthenticationFailed(nil, "warehouse credentials are incomplete: project_id, private_key and client_email are required")
	}

	keyJSON, err := creds.JSON()
	if err != nil {
		return nil, domain.ErrAuthenticationFailed(err, "encode service account")
	}

	client, err := bigquery.NewClient(ctx, creds.ProjectID,
		option.WithAuthCredentialsJSON(option.ServiceAccount, keyJSON))
	if err != nil {
		return nil, domain.ErrAuthenticationFailed(err, "create BigQuery client")
	}

	return &BigQuerySource{client: client, query: BigQueryText(table, limit)}, nil
}

// Query implements domain.DataSource.
func (s *BigQuerySource) Query() string { return s.query }

// Fetch implements domain.DataSource. Column names come from the result
// schema and rows keep the order the warehouse returned.
func (s *BigQuerySource) Fetch(ctx context.Context) (*domain.Table, error) {
	it, err := s.client.Query(s.query).Read(ctx)
	if err != nil {
		return nil, Classify(err)
	}

	var rows [][]domain.Value
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, Classify(fmt.Errorf("read row %d: %w", len(rows), err))
		}
		vals := make([]domain.Value, len(row))
		for i, v := range row {
			vals[i] = domain.NormalizeValue(v)
		}
		rows = append(rows, vals)
	}

	columns := make([]string, len(it.Schema))
	for i, f := range it.Schema {
		columns[i] = f.Name
	}
	return domain.NewTable(columns, rows), nil
}

// Close releases the BigQuery client.
func (s *BigQuerySource) Close() error {
	return s.client.Close()
}
