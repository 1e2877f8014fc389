package secretstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

var _ Reader = (*AzureReader)(nil)

// AzureReader reads secret documents from Azure Blob Storage using
// shared-key credentials.
type AzureReader struct {
	client *azblob.Client
}

// NewAzureReader creates a blob client for cfg.AzureAccountName.
func NewAzureReader(cfg Config) (*AzureReader, error) {
	if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
		return nil, fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY are required for Azure secrets")
	}
	cred, err := azblob.NewSharedKeyCredential(cfg.AzureAccountName, cfg.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AzureAccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzureReader{client: client}, nil
}

// Read implements Reader. uri may be az://container/blob,
// abfss://container@account.dfs.core.windows.net/blob, or
// https://account.blob.core.windows.net/container/blob.
func (r *AzureReader) Read(ctx context.Context, uri string) ([]byte, error) {
	container, blob, err := parseAzurePath(uri)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("download Azure blob %q: %w", uri, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	return readLimited(resp.Body, uri)
}

// parseAzurePath extracts the container and blob name from an Azure URI.
func parseAzurePath(path string) (container, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse Azure path %q: %w", path, err)
	}

	switch u.Scheme {
	case "abfss":
		// url.Parse reads "container" as userinfo and the account as host.
		if u.User == nil {
			return "", "", fmt.Errorf("abfss path %q missing container@account component", path)
		}
		container = u.User.Username()
		key = strings.TrimPrefix(u.Path, "/")
	case "az":
		container = u.Host
		key = strings.TrimPrefix(u.Path, "/")
	case "https":
		if !strings.Contains(u.Host, ".blob.core.windows.net") {
			return "", "", fmt.Errorf("unrecognized Azure HTTPS host %q in path %q", u.Host, path)
		}
		container, key, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	default:
		return "", "", fmt.Errorf("unrecognized Azure path scheme %q in %q", u.Scheme, path)
	}

	if container == "" {
		return "", "", fmt.Errorf("empty container in Azure path %q", path)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in Azure path %q", path)
	}
	return container, key, nil
}
