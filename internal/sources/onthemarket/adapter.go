// Package onthemarket implements the OnTheMarket portal adapter.
//
// OnTheMarket serves plain server-rendered HTML, so the adapter reads the
// result cards and classifies their text lines. Selectors are kept loose:
// the portal renames its card classes often, the line shapes less so.
package onthemarket

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
const SourceID = "onthemarket"

// DefaultBaseURL is the production portal URL.
const DefaultBaseURL = "https://www.onthemarket.com"

// maxCards bounds how many result cards one fetch parses.
const maxCards = 50

// Config holds adapter configuration.
type Config struct {
	// BaseURL overrides the portal URL. Used by tests.
	BaseURL string

	// Client is the shared throttled HTTP client.
	Client *sources.Client
}

// Adapter implements driven.SourceAdapter for OnTheMarket.
type Adapter struct {
	baseURL string
	client  *sources.Client
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates an OnTheMarket adapter.
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
		RadiusScoped:        true,
		SupportsPriceFilter: true,
	}
}

// Fetch returns the raw listings for a location under the filters.
func (a *Adapter) Fetch(ctx context.Context, location string, filters driven.FetchFilters) ([]domain.RawListing, error) {
	doc, err := a.client.Document(ctx, a.searchURL(location, filters))
	if err != nil {
		return nil, err
	}

	cards := doc.Find("[data-testid='result-card']")
	if cards.Length() == 0 {
		cards = doc.Find("article, .property-result")
	}

	var listings []domain.RawListing
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= maxCards {
			return false
		}
		if listing, ok := a.parseCard(card); ok {
			listings = append(listings, listing)
		}
		return true
	})
	return listings, nil
}

// searchURL builds the filtered result page URL.
func (a *Adapter) searchURL(location string, filters driven.FetchFilters) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(location), " ", "-"))

	// The portal only accepts whole-mile radii, with 0.5 as the sole
	// sub-mile option.
	radius := strconv.Itoa(int(filters.Radius))
	if filters.Radius > 0 && filters.Radius < 1 {
		radius = "0.5"
	}

	q := url.Values{}
	q.Set("radius", radius)
	q.Set("view", "grid")
	if filters.MaxPrice > 0 {
		q.Set("max-price", strconv.Itoa(filters.MaxPrice))
	}
	if filters.MinPrice > 0 {
		q.Set("min-price", strconv.Itoa(filters.MinPrice))
	}
	return a.baseURL + "/for-sale/property/" + url.PathEscape(slug) + "/?" + q.Encode()
}

// parseCard extracts one listing from a result card.
func (a *Adapter) parseCard(card *goquery.Selection) (domain.RawListing, bool) {
	link := card.Find("a[href*='/details/']").First()
	if link.Length() == 0 {
		link = card.Find("a").First()
	}
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return domain.RawListing{}, false
	}

	detailURL := href
	if strings.HasPrefix(href, "/") {
		detailURL = a.baseURL + href
	}

	lines := sources.ElementLines(card)
	listing := domain.RawListing{
		SourceID:    SourceID,
		URL:         detailURL,
		Title:       "Property",
		Description: strings.Join(lines, "\n"),
	}
	for _, line := range lines {
		switch {
		case strings.Contains(line, "£"):
			if listing.PriceText == "" {
				listing.PriceText = line
			}
		case strings.Contains(strings.ToLower(line), "bed"):
			if listing.Title == "Property" {
				listing.Title = line
			}
		case strings.Contains(line, ",") && len(line) > 10:
			if listing.Address == "" {
				listing.Address = line
			}
		}
	}
	return listing, true
}
