package domain

import "context"

// DataSource runs the dashboard's single fixed query.
// Implemented by source.BigQuerySource and source.DuckDBSource.
type DataSource interface {
	// Fetch executes the query and returns its result. Failures are reported
	// as *AuthenticationFailedError or *SourceUnavailableError.
	Fetch(ctx context.Context) (*Table, error)
	// Query returns the fixed query text. It doubles as the cache key.
	Query() string
}

// TableProvider hands out the cached base table.
// Implemented by cache.ResultCache.
type TableProvider interface {
	Get(ctx context.Context) (*Table, error)
	Refresh(ctx context.Context) (*Table, error)
}
