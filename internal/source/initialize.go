package source

import (
	"context"
	"io"
	"log/slog"

	"crash-dash/internal/credentials"
	"crash-dash/internal/domain"
)

// Config selects and parameterizes the data source.
type Config struct {
	Kind      string // KindBigQuery or KindDuckDB
	Table     string
	RowLimit  int
	LocalPath string
}

// Source is a DataSource that holds client resources.
type Source interface {
	domain.DataSource
	io.Closer
}

// Initialize builds the configured data source once at startup. It fails
// fast: missing credentials or an unusable client are reported here rather
// than on the first page view.
func Initialize(ctx context.Context, cfg Config, creds credentials.ServiceAccount, logger *slog.Logger) (Source, error) {
	if cfg.RowLimit == 0 {
		cfg.RowLimit = DefaultRowLimit
	}

	switch cfg.Kind {
	case KindDuckDB:
		src, err := NewDuckDBSource(cfg.LocalPath, cfg.RowLimit)
		if err != nil {
			return nil, err
		}
		logger.Info("data source initialized", "kind", cfg.Kind, "path", cfg.LocalPath, "limit", cfg.RowLimit)
		return src, nil
	case KindBigQuery, "":
		table := cfg.Table
		if table == "" {
			table = DefaultTable
		}
		src, err := NewBigQuerySource(ctx, creds, table, cfg.RowLimit)
		if err != nil {
			return nil, err
		}
		logger.Info("data source initialized", "kind", KindBigQuery, "table", table,
			"project", creds.ProjectID, "limit", cfg.RowLimit)
		return src, nil
	default:
		return nil, domain.ErrValidation("unknown source kind %q (want %q or %q)", cfg.Kind, KindBigQuery, KindDuckDB)
	}
}
