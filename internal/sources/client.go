package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/propscout/propscout-cli/internal/core/domain"
)

const (
	// BrowserUserAgent mirrors a desktop Chrome build. The portals serve
	// reduced or blocked markup to obvious bots.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// PerHostRate is the proactive throttle rate per host in requests
	// per second. Conservative enough to stay under burst detection.
	PerHostRate = 0.5

	// MaxBodySize caps response bodies. Listing pages run large but a
	// multi-megabyte response means something went wrong.
	MaxBodySize = 8 << 20
)

// Client is a throttled HTTP client shared by all source adapters.
// Each host gets its own token bucket so a slow portal cannot starve
// the others.
type Client struct {
	http *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
}

// NewClient creates a client with browser headers and per-host throttling.
func NewClient() *Client {
	return &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(PerHostRate),
	}
}

// NewClientWithHTTP creates a client around an existing http.Client.
// Used by tests to point adapters at a local server.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{
		http:     hc,
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Inf,
	}
}

// limiter returns the token bucket for a host, creating it on first use.
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(c.perHost, 1)
		c.limiters[host] = l
	}
	return l
}

// Get performs a throttled GET with browser headers.
// The caller must close the response body. Non-2xx statuses are returned
// as errors: 429 and 403 map to domain.ErrRateLimited, everything else
// to domain.ErrSourceFailed.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing url: %v", domain.ErrSourceFailed, err)
	}

	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", domain.ErrSourceFailed, err)
	}
	req.Header.Set("User-Agent", BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u.Host, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrRateLimited, u.Host, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrSourceFailed, u.Host, resp.StatusCode)
	}

	return resp, nil
}

// Document fetches a URL and parses the body as HTML.
func (c *Client) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing html: %v", domain.ErrSourceFailed, err)
	}
	return doc, nil
}

// JSON fetches a URL and decodes the body into v.
func (c *Client) JSON(ctx context.Context, rawURL string, v interface{}) error {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding json: %v", domain.ErrSourceFailed, err)
	}
	return nil
}

// NextData extracts the embedded __NEXT_DATA__ JSON blob from a page.
// Rightmove and Zoopla both server-render their search results into it.
func NextData(doc *goquery.Document) ([]byte, error) {
	raw := doc.Find("script#__NEXT_DATA__").First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: no __NEXT_DATA__ script tag", domain.ErrSourceFailed)
	}
	return []byte(raw), nil
}

// ElementLines flattens a card into one trimmed text line per element.
// Each element contributes only its own text, so nested markup does not
// produce duplicates.
func ElementLines(sel *goquery.Selection) []string {
	var lines []string
	collect := func(_ int, s *goquery.Selection) {
		own := strings.TrimSpace(s.Contents().Not("*").Text())
		if own != "" {
			lines = append(lines, own)
		}
	}
	sel.Each(collect)
	sel.Find("*").Each(collect)
	return lines
}

// CardLines splits a listing card's text into trimmed, non-empty lines.
// Auction sites render cards as loose text, so adapters classify lines
// rather than relying on selectors that churn.
func CardLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
