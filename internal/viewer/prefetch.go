package viewer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Prefetcher warms the images of an artwork. Implementations must return
// promptly once ctx is cancelled; errors are informational only.
type Prefetcher interface {
	Prefetch(ctx context.Context, images []string) error
}

// NopPrefetcher does nothing.
type NopPrefetcher struct{}

// Prefetch implements Prefetcher.
func (NopPrefetcher) Prefetch(context.Context, []string) error { return nil }

// HTTPPrefetcher issues GET requests for image paths against a base URL,
// typically an image CDN, so that its cache is warm when the browser asks.
// The first image is fetched before the rest, which are fetched in parallel.
type HTTPPrefetcher struct {
	baseURL    *url.URL
	httpClient *http.Client
	parallel   int
	logger     *slog.Logger
}

// NewHTTPPrefetcher creates a prefetcher for baseURL.
func NewHTTPPrefetcher(baseURL string, logger *slog.Logger) (*HTTPPrefetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("prefetch base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("prefetch base url %q: must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPPrefetcher{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		parallel:   4,
		logger:     logger,
	}, nil
}

// Prefetch implements Prefetcher.
func (p *HTTPPrefetcher) Prefetch(ctx context.Context, images []string) error {
	if len(images) == 0 {
		return nil
	}
	if err := p.fetch(ctx, images[0]); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallel)
	for _, img := range images[1:] {
		g.Go(func() error { return p.fetch(ctx, img) })
	}
	return g.Wait()
}

func (p *HTTPPrefetcher) fetch(ctx context.Context, image string) error {
	ref, err := url.Parse(strings.TrimPrefix(image, "/"))
	if err != nil {
		return fmt.Errorf("prefetch %s: %w", image, err)
	}
	target := p.baseURL.ResolveReference(ref).String()
	if ref.IsAbs() {
		target = image
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("prefetch %s: %w", image, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("prefetch %s: %w", image, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("prefetch %s: status %d", image, resp.StatusCode)
	}
	p.logger.Debug("viewer: prefetched", slog.String("url", target))
	return nil
}
