package secretstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var _ Reader = (*GCSReader)(nil)

// GCSReader reads secret documents from Google Cloud Storage objects.
type GCSReader struct {
	client *storage.Client
}

// NewGCSReader creates a GCS client from cfg.GCSKeyFile, or from application
// default credentials when no key file is configured.
func NewGCSReader(ctx context.Context, cfg Config) (*GCSReader, error) {
	var opts []option.ClientOption
	if cfg.GCSKeyFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.GCSKeyFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSReader{client: client}, nil
}

// Read implements Reader. uri has the form gs://bucket/path/to/secrets.yaml.
func (r *GCSReader) Read(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := parseGCSPath(uri)
	if err != nil {
		return nil, err
	}
	obj, err := r.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object %q: %w", uri, err)
	}
	defer obj.Close() //nolint:errcheck
	return readLimited(obj, uri)
}

// Close releases the underlying client.
func (r *GCSReader) Close() error {
	return r.client.Close()
}

// parseGCSPath extracts bucket and key from a "gs://bucket/path/to/file" URI.
func parseGCSPath(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse GCS path %q: %w", path, err)
	}
	if u.Scheme != "gs" {
		return "", "", fmt.Errorf("expected gs:// scheme, got %q in %q", u.Scheme, path)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in GCS path %q", path)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in GCS path %q", path)
	}
	return bucket, key, nil
}
