// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"crash-dash/internal/credentials"
	"crash-dash/internal/secretstore"
	"crash-dash/internal/source"
)

// Defaults.
const (
	DefaultListenAddr         = ":8080"
	DefaultCredentialsEnvFile = "google-credentials.env"
	DefaultSecretsURI         = ".streamlit/secrets.yaml"
	DefaultLocalDataPath      = "crash.parquet"
	DefaultFetchTimeout       = 2 * time.Minute
)

// Config holds the configuration for the dashboard server.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 20)
	RateLimitBurst int     // burst capacity (default 40)

	// Data source
	SourceKind    string        // "bigquery" (default) or "duckdb"
	SourceTable   string        // project.dataset.table (default cmpe255-451700.crash2025.crash)
	RowLimit      int           // LIMIT of the fixed query (default 1000)
	LocalDataPath string        // parquet/CSV file for the duckdb source
	FetchTimeout  time.Duration // upper bound for one warehouse fetch (default 2m)

	// RefreshSchedule is a cron spec for periodic cache refresh. Empty disables it.
	RefreshSchedule string

	// Credential sources. The local entry point reads CredentialsEnvFile,
	// the hosted one reads the secret document at SecretsURI.
	CredentialsEnvFile string
	SecretsURI         string
	SecretsSection     string

	// Object-store access for remote SecretsURI values. All optional.
	S3KeyID      string
	S3Secret     string
	S3Endpoint   string
	S3Region     string
	AzureAccount string
	AzureKey     string
	GCSKeyFile   string

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Source returns the data source settings.
func (c *Config) Source() source.Config {
	return source.Config{
		Kind:      c.SourceKind,
		Table:     c.SourceTable,
		RowLimit:  c.RowLimit,
		LocalPath: c.LocalDataPath,
	}
}

// SecretStore returns the object-store settings used to read SecretsURI.
func (c *Config) SecretStore() secretstore.Config {
	return secretstore.Config{
		GCSKeyFile:       c.GCSKeyFile,
		S3KeyID:          c.S3KeyID,
		S3Secret:         c.S3Secret,
		S3Endpoint:       c.S3Endpoint,
		S3Region:         c.S3Region,
		AzureAccountName: c.AzureAccount,
		AzureAccountKey:  c.AzureKey,
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:         os.Getenv("LISTEN_ADDR"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		Env:                os.Getenv("ENV"),
		SourceKind:         strings.ToLower(strings.TrimSpace(os.Getenv("SOURCE_KIND"))),
		SourceTable:        os.Getenv("SOURCE_TABLE"),
		LocalDataPath:      os.Getenv("LOCAL_DATA_PATH"),
		RefreshSchedule:    strings.TrimSpace(os.Getenv("CACHE_REFRESH_SCHEDULE")),
		CredentialsEnvFile: os.Getenv("CREDENTIALS_ENV_FILE"),
		SecretsURI:         os.Getenv("SECRETS_URI"),
		SecretsSection:     os.Getenv("SECRETS_SECTION"),
		S3KeyID:            os.Getenv("S3_KEY_ID"),
		S3Secret:           os.Getenv("S3_SECRET"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3Region:           os.Getenv("S3_REGION"),
		AzureAccount:       os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureKey:           os.Getenv("AZURE_STORAGE_KEY"),
		GCSKeyFile:         os.Getenv("GCS_KEY_FILE"),
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// Data source
	if v := os.Getenv("SOURCE_ROW_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("SOURCE_ROW_LIMIT must be a positive integer, got %q", v)
		}
		cfg.RowLimit = n
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("FETCH_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.FetchTimeout = d
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 20
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 40
	}
	if cfg.SourceKind == "" {
		cfg.SourceKind = source.KindBigQuery
	}
	if cfg.SourceTable == "" {
		cfg.SourceTable = source.DefaultTable
	}
	if cfg.RowLimit == 0 {
		cfg.RowLimit = source.DefaultRowLimit
	}
	if cfg.LocalDataPath == "" {
		cfg.LocalDataPath = DefaultLocalDataPath
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.CredentialsEnvFile == "" {
		cfg.CredentialsEnvFile = DefaultCredentialsEnvFile
	}
	if cfg.SecretsURI == "" {
		cfg.SecretsURI = DefaultSecretsURI
	}
	if cfg.SecretsSection == "" {
		cfg.SecretsSection = credentials.DefaultSection
	}

	switch cfg.SourceKind {
	case source.KindBigQuery:
		if err := source.ValidateTable(cfg.SourceTable); err != nil {
			return nil, fmt.Errorf("SOURCE_TABLE: %w", err)
		}
	case source.KindDuckDB:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("SOURCE_KIND=duckdb: serving local file %s instead of the warehouse", cfg.LocalDataPath))
	default:
		return nil, fmt.Errorf("SOURCE_KIND must be %q or %q, got %q", source.KindBigQuery, source.KindDuckDB, cfg.SourceKind)
	}

	// Production mode: a local development source is a fatal error.
	if cfg.IsProduction() && cfg.SourceKind != source.KindBigQuery {
		return nil, fmt.Errorf("SOURCE_KIND=%s is not allowed in production (ENV=production)", cfg.SourceKind)
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	_, err := loadEnvFile(path, false)
	return err
}

// LoadCredentialsEnv reads the credential env file and reports whether it
// existed. Unlike LoadDotEnv, values may span several lines when quoted, so
// a PEM private key can be stored verbatim.
func LoadCredentialsEnv(path string) (bool, error) {
	return loadEnvFile(path, true)
}

func loadEnvFile(path string, multiline bool) (bool, error) {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil // missing env file is not an error
		}
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimPrefix(strings.TrimSpace(key), "export ")
		value = strings.TrimSpace(value)
		if multiline && openQuote(value) {
			var b strings.Builder
			b.WriteString(value)
			for scanner.Scan() {
				next := scanner.Text()
				b.WriteString("\n")
				b.WriteString(next)
				if strings.HasSuffix(strings.TrimSpace(next), value[:1]) {
					break
				}
			}
			value = strings.TrimSpace(b.String())
		}
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return true, fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return true, scanner.Err()
}

// openQuote reports whether s starts a quoted value that does not close on
// the same line.
func openQuote(s string) bool {
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return false
	}
	return len(s) == 1 || s[len(s)-1] != s[0]
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
