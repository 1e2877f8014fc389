package secretstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
)

var _ Reader = FileReader{}

// FileReader reads secrets from the local filesystem, e.g. a secret volume
// mounted by the hosting platform. It accepts plain paths and file:// URIs.
type FileReader struct{}

// Read implements Reader.
func (FileReader) Read(_ context.Context, uri string) ([]byte, error) {
	path := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		path = u.Path
	}

	f, err := os.Open(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return nil, fmt.Errorf("open secret %q: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return readLimited(f, path)
}
