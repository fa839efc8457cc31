// Package artstation imports a user's public ArtStation projects into the
// artwork catalog.
package artstation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is the public ArtStation site.
const DefaultBaseURL = "https://www.artstation.com"

const userAgent = "designa-portfolio-bot/1.0"

// HTTPError is returned for a non-2xx answer that survived all retries.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("artstation: %s: status %d: %s", e.URL, e.StatusCode, e.Message)
}

// retryable reports whether a status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Client talks to the public JSON endpoints on behalf of one user.
type Client struct {
	baseURL    string
	username   string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the number of attempts per request and the base backoff.
// The wait before attempt n+1 is n*backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// WithLogger sets the logger used for retry and skip warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for username.
func New(username string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		username:   username,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   3,
		backoff:    500 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get performs a GET with retries and returns the open response on success.
// The caller closes the body.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, time.Duration(attempt-1)*c.backoff); err != nil {
				return nil, err
			}
		}

		resp, err := c.do(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		} else if resp.StatusCode < 300 {
			return resp, nil
		} else {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
			httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: rawURL, Message: strings.TrimSpace(string(msg))}
			if !retryable(resp.StatusCode) {
				return nil, httpErr
			}
			lastErr = httpErr
		}

		c.logger.Warn("artstation: request failed",
			slog.String("url", rawURL),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()))
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", DefaultBaseURL+"/"+url.PathEscape(c.username))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return c.httpClient.Do(req)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.get(ctx, c.baseURL+path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("artstation: decode %s: %w", path, err)
	}
	return nil
}

// Projects lists every public project of the user, following pages until
// an empty one.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var all []Project
	for page := 1; ; page++ {
		var p projectPage
		path := fmt.Sprintf("/users/%s/projects.json?page=%d", url.PathEscape(c.username), page)
		if err := c.getJSON(ctx, path, &p); err != nil {
			return nil, fmt.Errorf("artstation.Projects: page %d: %w", page, err)
		}
		if len(p.Data) == 0 {
			return all, nil
		}
		all = append(all, p.Data...)
	}
}

// Project fetches the details of one project by hash id.
func (c *Client) Project(ctx context.Context, hashID string) (*ProjectDetails, error) {
	var d ProjectDetails
	if err := c.getJSON(ctx, "/projects/"+url.PathEscape(hashID)+".json", &d); err != nil {
		return nil, fmt.Errorf("artstation.Project: %w", err)
	}
	return &d, nil
}

// Download saves the resource at rawURL to dest, replacing it atomically.
func (c *Client) Download(ctx context.Context, rawURL, dest string) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("artstation.Download: %w", err)
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("artstation.Download: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("artstation.Download: write %s: %w", filepath.Base(dest), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("artstation.Download: close temp: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("artstation.Download: rename: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isContextErr reports whether err stems from cancellation.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
