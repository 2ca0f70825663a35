// Package auctionhouse implements the Auction House UK adapter.
//
// The auction site is keyword searched rather than radius scoped, so the
// orchestrator queries it once per run. Lot cards are loose text; the
// adapter classifies each card's lines instead of trusting selectors.
package auctionhouse

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/sources"
)

// SourceID is the registry identifier for this adapter.
const SourceID = "auctionhouse"

// DefaultBaseURL is the production site URL.
const DefaultBaseURL = "https://www.auctionhouse.co.uk"

// maxLots bounds how many lot cards one fetch parses.
const maxLots = 50

// Config holds adapter configuration.
type Config struct {
	// BaseURL overrides the site URL. Used by tests.
	BaseURL string

	// Client is the shared throttled HTTP client.
	Client *sources.Client
}

// Adapter implements driven.SourceAdapter for Auction House UK.
type Adapter struct {
	baseURL string
	client  *sources.Client
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates an Auction House UK adapter.
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

// Fetch returns the raw listings for a keyword search.
func (a *Adapter) Fetch(ctx context.Context, location string, filters driven.FetchFilters) ([]domain.RawListing, error) {
	searchURL := a.baseURL + "/auction/search-results?keyword=" + url.QueryEscape(location)
	doc, err := a.client.Document(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var listings []domain.RawListing
	doc.Find(".lot-search-result a.home-lot-wrapper-link").EachWithBreak(func(i int, link *goquery.Selection) bool {
		if i >= maxLots {
			return false
		}
		if listing, ok := a.parseLot(link); ok {
			listings = append(listings, listing)
		}
		return true
	})
	return listings, nil
}

// parseLot extracts one listing from a lot card link.
func (a *Adapter) parseLot(link *goquery.Selection) (domain.RawListing, bool) {
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return domain.RawListing{}, false
	}

	detailURL := href
	if strings.HasPrefix(href, "/") {
		detailURL = a.baseURL + href
	}

	lines := sources.ElementLines(link)
	listing := domain.RawListing{
		SourceID:    SourceID,
		URL:         detailURL,
		Title:       "Auction Property",
		PriceText:   "POA",
		Agent:       "Auction House UK",
		Description: strings.Join(lines, "\n"),
	}
	for _, line := range lines {
		switch {
		case strings.Contains(line, "£"):
			listing.PriceText = line
		case strings.Contains(line, "Bed") || strings.Contains(line, "Land") || strings.Contains(line, "Property"):
			listing.Title = line
		case len(line) > 10 && !strings.Contains(line, "Lot"):
			listing.Address = line
		}
	}
	if listing.Address == "" && len(lines) > 0 {
		listing.Address = lines[len(lines)-1]
	}
	return listing, true
}
