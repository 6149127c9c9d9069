// Package images provides the image fetch and storage adapters behind
// gallery creation: downloading source images over HTTP and re-hosting the
// bytes under the engine's own public URL space.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/platform/httpclient"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that Fetcher implements ports.ImageFetcher.
var _ ports.ImageFetcher = (*Fetcher)(nil)

// Fetcher downloads images through the instrumented HTTP client, inheriting
// its retry, circuit breaker, and rate limiting behavior. Downloads larger
// than maxBytes are rejected before buffering completes.
type Fetcher struct {
	client   *httpclient.Client
	maxBytes int64
}

// NewFetcher creates an image fetcher. maxBytes caps the accepted image size.
func NewFetcher(client *httpclient.Client, maxBytes int64) *Fetcher {
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch downloads the image at url and returns its bytes and declared
// content type.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building image request: %w", err)
	}

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, "", fmt.Errorf("%w: fetching %s: %v", domain.ErrUnavailable, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: fetching %s: HTTP %d", domain.ErrUnavailable, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", domain.ErrUnavailable, url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("image at %s exceeds %d bytes", url, f.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
