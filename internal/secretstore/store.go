// Package secretstore reads the hosted secret document that carries the
// warehouse credentials. Documents may live on local disk (a mounted secret)
// or in GCS, S3-compatible, or Azure Blob object storage.
package secretstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// maxSecretSize caps how much of a secret object is read.
const maxSecretSize = 1 << 20

// Reader fetches a secret document by URI.
// Implementations: FileReader, GCSReader, S3Reader, AzureReader.
type Reader interface {
	Read(ctx context.Context, uri string) ([]byte, error)
}

// Config holds the object-store credentials used to reach secret documents.
// Fields for unused backends may be empty.
type Config struct {
	GCSKeyFile string // service-account key file; empty uses application default credentials

	S3KeyID    string
	S3Secret   string
	S3Endpoint string // host[:port], without scheme; empty uses AWS
	S3Region   string

	AzureAccountName string
	AzureAccountKey  string
}

// Scheme returns the storage backend named by uri: "file", "gs", "s3" or "az".
func Scheme(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse secret URI %q: %w", uri, err)
	}
	switch u.Scheme {
	case "", "file":
		return "file", nil
	case "gs":
		return "gs", nil
	case "s3":
		return "s3", nil
	case "az", "abfss":
		return "az", nil
	case "https":
		if strings.Contains(u.Host, ".blob.core.windows.net") {
			return "az", nil
		}
	}
	return "", fmt.Errorf("unsupported secret URI scheme %q in %q", u.Scheme, uri)
}

// NewReader creates the Reader for uri's backend.
func NewReader(ctx context.Context, uri string, cfg Config) (Reader, error) {
	scheme, err := Scheme(uri)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case "gs":
		return NewGCSReader(ctx, cfg)
	case "s3":
		return NewS3Reader(cfg)
	case "az":
		return NewAzureReader(cfg)
	default:
		return FileReader{}, nil
	}
}

// Read fetches the secret document at uri using the matching backend.
func Read(ctx context.Context, uri string, cfg Config) ([]byte, error) {
	r, err := NewReader(ctx, uri, cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close() //nolint:errcheck
	}
	return r.Read(ctx, uri)
}

func readLimited(r io.Reader, uri string) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxSecretSize+1))
	if err != nil {
		return nil, fmt.Errorf("read secret %q: %w", uri, err)
	}
	if len(b) > maxSecretSize {
		return nil, fmt.Errorf("secret %q exceeds %d bytes", uri, maxSecretSize)
	}
	return b, nil
}
