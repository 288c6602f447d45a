package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

const maxCatalogSize = 2 * 1024 * 1024

// ErrCatalogTooLarge is returned when a fetched catalog exceeds the size limit
var ErrCatalogTooLarge = errors.New("catalog too large")

// Fetcher downloads catalog documents over HTTP
type Fetcher struct {
	Client *http.Client
}

// NewFetcher creates a fetcher with a request timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch retrieves and decodes the catalog at rawURL. The format is taken
// from the URL path's extension.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Catalog, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxCatalogSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrCatalogTooLarge, maxCatalogSize)
	}
	return Decode(path.Base(u.Path), body)
}
