package secretstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var _ Reader = (*S3Reader)(nil)

// S3Reader reads secret documents from S3 or S3-compatible object storage.
type S3Reader struct {
	client *s3.Client
}

// NewS3Reader creates an S3 client with static credentials. A custom
// endpoint switches to path-style addressing, which S3-compatible stores
// generally require.
func NewS3Reader(cfg Config) (*S3Reader, error) {
	if cfg.S3KeyID == "" || cfg.S3Secret == "" {
		return nil, fmt.Errorf("S3_KEY_ID and S3_SECRET are required for s3:// secrets")
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.S3KeyID, cfg.S3Secret, ""),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", cfg.S3Endpoint))
		opts.UsePathStyle = true
	}
	return &S3Reader{client: s3.New(opts)}, nil
}

// Read implements Reader. uri has the form s3://bucket/path/to/secrets.yaml.
func (r *S3Reader) Read(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := parseS3Path(uri)
	if err != nil {
		return nil, err
	}
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get S3 object %q: %w", uri, err)
	}
	defer out.Body.Close() //nolint:errcheck
	return readLimited(out.Body, uri)
}

// parseS3Path extracts bucket and key from an "s3://bucket/path/to/file" URI.
func parseS3Path(s3Path string) (bucket, key string, err error) {
	u, err := url.Parse(s3Path)
	if err != nil {
		return "", "", fmt.Errorf("parse S3 path %q: %w", s3Path, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, s3Path)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("empty key in S3 path %q", s3Path)
	}
	return bucket, key, nil
}
