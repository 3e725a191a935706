package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/couchcryptid/openwater-etl/internal/observability"
)

// maxFeedBytes caps the downloaded document. The full CWTG feed is well
// under a megabyte.
const maxFeedBytes = 16 << 20

// FetchError reports a feed download that failed before scanning could start.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client downloads the Coastal Water Temperature Guide RSS feed.
type Client struct {
	url        string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger

	// Validators from the last 200 response, replayed as a conditional
	// request so an unchanged feed is served from memory.
	mu           sync.Mutex
	etag         string
	lastModified string
	body         []byte
}

// NewClient creates a feed client.
func NewClient(url string, timeout time.Duration, userAgent string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url:       url,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the complete feed document. The body is read in full before
// returning, so callers never scan a partial document.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()
	body, outcome, err := c.fetch(ctx)
	c.metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
	c.metrics.FeedFetches.WithLabelValues(outcome).Inc()
	return body, err
}

func (c *Client) fetch(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, "error", &FetchError{URL: c.url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.5")

	c.mu.Lock()
	if c.etag != "" {
		req.Header.Set("If-None-Match", c.etag)
	}
	if c.lastModified != "" {
		req.Header.Set("If-Modified-Since", c.lastModified)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "error", &FetchError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.body != nil {
			c.logger.Debug("feed not modified", "url", c.url)
			return c.body, "not_modified", nil
		}
		return nil, "error", &FetchError{URL: c.url, StatusCode: resp.StatusCode, Err: errors.New("not modified but no cached copy")}
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "error", &FetchError{URL: c.url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", snippet)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, "error", &FetchError{URL: c.url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxFeedBytes {
		return nil, "error", &FetchError{URL: c.url, StatusCode: resp.StatusCode, Err: fmt.Errorf("feed exceeds %d bytes", maxFeedBytes)}
	}

	c.mu.Lock()
	c.etag = resp.Header.Get("ETag")
	c.lastModified = resp.Header.Get("Last-Modified")
	c.body = body
	c.mu.Unlock()

	c.logger.Debug("feed fetched", "url", c.url, "bytes", len(body))
	return body, "success", nil
}
