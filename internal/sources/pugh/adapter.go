// Package pugh implements the Pugh & Co auction adapter.
package pugh

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/sources"
)

// SourceID is the registry identifier for this adapter.
const SourceID = "pugh"

// DefaultBaseURL is the production site URL.
const DefaultBaseURL = "https://www.pugh-auctions.com"

// Config holds adapter configuration.
type Config struct {
	// BaseURL overrides the site URL. Used by tests.
	BaseURL string

	// Client is the shared throttled HTTP client.
	Client *sources.Client
}

// Adapter implements driven.SourceAdapter for Pugh & Co.
type Adapter struct {
	baseURL string
	client  *sources.Client
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates a Pugh adapter.
func New(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = sources.NewClient()
	}
	return &Adapter{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  cfg.Client,
	}
}

// ID returns the source identifier.
func (a *Adapter) ID() string {
	return SourceID
}

// Capabilities returns what this adapter supports.
func (a *Adapter) Capabilities() driven.AdapterCapabilities {
	return driven.AdapterCapabilities{
		Auction: true,
	}
}

// Fetch returns the raw listings for a location search.
func (a *Adapter) Fetch(ctx context.Context, location string, filters driven.FetchFilters) ([]domain.RawListing, error) {
	q := url.Values{}
	q.Set("location", location)
	q.Set("include-sold", "off")
	if filters.Radius > 0 {
		q.Set("radius", strconv.FormatFloat(filters.Radius, 'f', -1, 64))
	}

	doc, err := a.client.Document(ctx, a.baseURL+"/property-search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	// The same property link appears several times per card; dedupe on
	// the trailing path segment.
	seen := make(map[string]bool)
	var listings []domain.RawListing
	doc.Find("a[href*='/property/']").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		id := href[strings.LastIndex(href, "/")+1:]
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		listings = append(listings, a.parseCard(link, href))
	})
	return listings, nil
}

// parseCard extracts one listing from the card wrapping a property link.
func (a *Adapter) parseCard(link *goquery.Selection, href string) domain.RawListing {
	detailURL := href
	if strings.HasPrefix(href, "/") {
		detailURL = a.baseURL + href
	}

	// The link sits inside the card; climb two levels to its container.
	card := link.Parent().Parent()
	lines := sources.ElementLines(card)

	listing := domain.RawListing{
		SourceID:    SourceID,
		URL:         detailURL,
		Title:       "Auction Property",
		PriceText:   "POA",
		Agent:       "Pugh Auctions",
		Description: strings.Join(lines, "\n"),
	}
	for _, line := range lines {
		switch {
		case strings.Contains(line, "Guide Price") || strings.Contains(line, "£"):
			listing.PriceText = line
		case strings.Contains(line, ",") && len(line) > 15:
			listing.Address = line
		}
	}
	return listing
}
