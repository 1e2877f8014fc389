package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/duckdb/duckdb-go/v2" // duckdb driver

	"crash-dash/internal/domain"
)

var _ domain.DataSource = (*DuckDBSource)(nil)

// DuckDBSource runs the fixed query over a local parquet or CSV file with an
// in-memory DuckDB. It stands in for the warehouse during development.
type DuckDBSource struct {
	db    *sql.DB
	query string
}

// NewDuckDBSource opens an in-memory DuckDB reading path.
func NewDuckDBSource(path string, limit int) (*DuckDBSource, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, domain.ErrSourceUnavailable(err, "local data file %q", path)
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, domain.ErrSourceUnavailable(err, "open duckdb")
	}
	return &DuckDBSource{db: db, query: DuckDBText(path, limit)}, nil
}

// Query implements domain.DataSource.
func (s *DuckDBSource) Query() string { return s.query }

// Fetch implements domain.DataSource.
func (s *DuckDBSource) Fetch(ctx context.Context) (*domain.Table, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, domain.ErrSourceUnavailable(err, "local query failed")
	}
	defer rows.Close() //nolint:errcheck

	t, err := scanRows(rows)
	if err != nil {
		return nil, domain.ErrSourceUnavailable(err, "read local rows")
	}
	return t, nil
}

// Close closes the database handle.
func (s *DuckDBSource) Close() error {
	return s.db.Close()
}

func scanRows(rows *sql.Rows) (*domain.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]domain.Value
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(out), err)
		}
		row := make([]domain.Value, len(vals))
		for i, v := range vals {
			row[i] = domain.NormalizeValue(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.NewTable(cols, out), nil
}
