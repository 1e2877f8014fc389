// Command hosted runs the crash dashboard with service-account credentials
// read from a secrets document, either a local file or an object in GCS, S3
// or Azure Blob Storage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crash-dash/internal/app"
	"crash-dash/internal/config"
	"crash-dash/internal/credentials"
	"crash-dash/internal/secretstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := app.NewLogger(cfg, os.Stderr)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	creds, err := loadCredentials(ctx, cfg)
	if err != nil {
		return err
	}
	scheme, _ := secretstore.Scheme(cfg.SecretsURI)
	logger.Info("credentials loaded from secret store",
		"uri", cfg.SecretsURI, "scheme", scheme, "section", cfg.SecretsSection)

	a, err := app.New(ctx, app.Deps{
		Cfg:         cfg,
		Credentials: creds,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}

func loadCredentials(ctx context.Context, cfg *config.Config) (credentials.ServiceAccount, error) {
	doc, err := secretstore.Read(ctx, cfg.SecretsURI, cfg.SecretStore())
	if err != nil {
		return credentials.ServiceAccount{}, fmt.Errorf("read secrets %s: %w", cfg.SecretsURI, err)
	}
	creds, err := credentials.FromSecrets(doc, cfg.SecretsSection)
	if err != nil {
		return credentials.ServiceAccount{}, fmt.Errorf("secrets %s: %w", cfg.SecretsURI, err)
	}
	return creds, nil
}
