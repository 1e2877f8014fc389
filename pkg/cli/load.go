package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"crash-dash/internal/app"
	"crash-dash/internal/config"
	"crash-dash/internal/credentials"
	"crash-dash/internal/secretstore"
	"crash-dash/internal/service/dashboard"
)

// loadDashboard wires the dashboard from the same environment the server
// reads.
func loadDashboard(ctx context.Context, opts *rootOptions) (*dashboard.Service, io.Closer, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	creds, err := loadCredentials(ctx, cfg, opts)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, app.Deps{Cfg: cfg, Credentials: creds, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	return a.Dashboard, a, nil
}

func loadCredentials(ctx context.Context, cfg *config.Config, opts *rootOptions) (credentials.ServiceAccount, error) {
	if opts.secretsURI == "" {
		if _, err := config.LoadCredentialsEnv(cfg.CredentialsEnvFile); err != nil {
			return credentials.ServiceAccount{}, fmt.Errorf("load credentials: %w", err)
		}
		return credentials.FromEnv(), nil
	}

	doc, err := secretstore.Read(ctx, opts.secretsURI, cfg.SecretStore())
	if err != nil {
		return credentials.ServiceAccount{}, fmt.Errorf("read secrets %s: %w", opts.secretsURI, err)
	}
	section := opts.section
	if section == "" {
		section = cfg.SecretsSection
	}
	return credentials.FromSecrets(doc, section)
}
