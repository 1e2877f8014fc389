// Command server runs the crash dashboard with service-account credentials
// taken from a local env file (google-credentials.env by default).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"crash-dash/internal/app"
	"crash-dash/internal/config"
	"crash-dash/internal/credentials"
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

	found, err := config.LoadCredentialsEnv(cfg.CredentialsEnvFile)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if !found {
		logger.Warn("credentials env file not found; using process environment", "path", cfg.CredentialsEnvFile)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	a, err := app.New(ctx, app.Deps{
		Cfg:         cfg,
		Credentials: credentials.FromEnv(),
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("try: curl http://" + curlHostForListenAddr(cfg.ListenAddr) + "/api/v1/options")
	return a.Serve(ctx)
}

// curlHostForListenAddr turns a listen address into a host:port a local curl
// can reach.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost" + config.DefaultListenAddr
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
