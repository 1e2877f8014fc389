// Package source implements the dashboard's data sources: a BigQuery table
// for production and a local DuckDB-readable file for development. Each
// source runs exactly one fixed query.
package source

import (
	"fmt"
	"regexp"
	"strings"

	"crash-dash/internal/domain"
)

// Defaults for the crash table query.
const (
	DefaultTable    = "cmpe255-451700.crash2025.crash"
	DefaultRowLimit = 1000
)

// Kinds of data source.
const (
	KindBigQuery = "bigquery"
	KindDuckDB   = "duckdb"
)

var identPart = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateTable checks a project.dataset.table identifier. Only letters,
// digits, underscore and hyphen are allowed in each of one to three
// dot-separated parts, so the identifier can be spliced into the query.
func ValidateTable(table string) error {
	if table == "" {
		return domain.ErrValidation("table identifier is required")
	}
	parts := strings.Split(table, ".")
	if len(parts) > 3 {
		return domain.ErrValidation("table identifier %q has more than three parts", table)
	}
	for _, p := range parts {
		if !identPart.MatchString(p) {
			return domain.ErrValidation("invalid table identifier %q", table)
		}
	}
	return nil
}

// BigQueryText returns the fixed warehouse query for table.
func BigQueryText(table string, limit int) string {
	return fmt.Sprintf("SELECT *\nFROM `%s`\nLIMIT %d", table, limit)
}

// DuckDBText returns the fixed local query reading path.
func DuckDBText(path string, limit int) string {
	return fmt.Sprintf("SELECT * FROM '%s' LIMIT %d", strings.ReplaceAll(path, "'", "''"), limit)
}

func validateLimit(limit int) error {
	if limit <= 0 {
		return domain.ErrValidation("row limit must be positive, got %d", limit)
	}
	return nil
}
