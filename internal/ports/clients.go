package ports

import "context"

// CacheInvalidator drops derived cache entries after a successful mutation.
// Invalidation is fire-and-forget: failures are logged by implementations and
// never surface to the mutation path.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

// ImageFetcher retrieves a remote image by URL. Used only by gallery
// composite construction, which re-hosts fetched bytes in managed storage.
type ImageFetcher interface {
	// Fetch downloads the image at url and returns its bytes and declared
	// content type. Returns domain.ErrUnavailable-wrapped errors for
	// downstream failures.
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// ImageStore persists fetched image bytes to managed storage and returns the
// public URL the stored copy is served from.
type ImageStore interface {
	Put(ctx context.Context, shop, name string, data []byte, contentType string) (url string, err error)
}
