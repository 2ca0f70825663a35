// Package zoopla implements the Zoopla portal adapter.
//
// Zoopla embeds its search results in a __NEXT_DATA__ blob like Rightmove,
// but the blob's shape churns more often, so the adapter falls back to
// parsing the listing cards when the blob yields nothing.
package zoopla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/sources"
)

// SourceID is the registry identifier for this adapter.
const SourceID = "zoopla"

// DefaultBaseURL is the production portal URL.
const DefaultBaseURL = "https://www.zoopla.co.uk"

// Config holds adapter configuration.
type Config struct {
	// BaseURL overrides the portal URL. Used by tests.
	BaseURL string

	// Client is the shared throttled HTTP client.
	Client *sources.Client
}

// Adapter implements driven.SourceAdapter for Zoopla.
type Adapter struct {
	baseURL string
	client  *sources.Client
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates a Zoopla adapter.
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

	listings := a.fromNextData(doc)
	if len(listings) == 0 {
		listings = a.fromCards(doc)
	}
	return listings, nil
}

// searchURL builds the filtered result page URL.
func (a *Adapter) searchURL(location string, filters driven.FetchFilters) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(location), " ", "-"))

	q := url.Values{}
	q.Set("radius", strconv.FormatFloat(filters.Radius, 'f', -1, 64))
	q.Set("results_sort", "lowest_price")
	q.Set("page_size", "25")
	if filters.MaxPrice > 0 {
		q.Set("price_max", strconv.Itoa(filters.MaxPrice))
	}
	if filters.MinPrice > 0 {
		q.Set("price_min", strconv.Itoa(filters.MinPrice))
	}
	return a.baseURL + "/for-sale/property/" + url.PathEscape(slug) + "/?" + q.Encode()
}

// fromNextData decodes the embedded result blob. A missing or reshaped
// blob is not an error here; the caller falls back to card parsing.
func (a *Adapter) fromNextData(doc *goquery.Document) []domain.RawListing {
	blob, err := sources.NextData(doc)
	if err != nil {
		return nil
	}

	var page nextDataPage
	if err := json.Unmarshal(blob, &page); err != nil {
		return nil
	}

	var listings []domain.RawListing
	for _, l := range page.Props.PageProps.RegularListingsFormatted {
		id := string(l.ListingID)
		if id == "" {
			continue
		}
		listings = append(listings, domain.RawListing{
			SourceID:    SourceID,
			URL:         a.baseURL + "/for-sale/details/" + id,
			Title:       l.Title,
			Description: strings.TrimSpace(l.Title + " " + l.featureText()),
			PriceText:   l.Price,
			Address:     l.Address,
			Agent:       l.Branch.Name,
		})
	}
	return listings
}

// fromCards parses the server-rendered listing cards directly.
func (a *Adapter) fromCards(doc *goquery.Document) []domain.RawListing {
	var listings []domain.RawListing
	doc.Find("div[data-testid='regular-listings'] div[id^='listing_']").Each(func(_ int, card *goquery.Selection) {
		id, _ := card.Attr("id")
		id = strings.TrimPrefix(id, "listing_")
		if id == "" {
			return
		}

		detailURL := a.baseURL + "/for-sale/details/" + id
		if href, ok := card.Find("a[href^='/for-sale/details/']").First().Attr("href"); ok {
			detailURL = a.baseURL + href
		}

		lines := sources.ElementLines(card)
		listing := domain.RawListing{
			SourceID:    SourceID,
			URL:         detailURL,
			Title:       "Property",
			Description: strings.Join(lines, "\n"),
			Address:     card.Find("address").First().Text(),
			PriceText:   card.Find("p[data-testid='listing-price']").First().Text(),
		}
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line), "bed") {
				listing.Title = line
				break
			}
		}
		listings = append(listings, listing)
	})
	return listings
}

// nextDataPage mirrors the slice of the __NEXT_DATA__ blob we care about.
type nextDataPage struct {
	Props struct {
		PageProps struct {
			RegularListingsFormatted []nextDataListing `json:"regularListingsFormatted"`
		} `json:"pageProps"`
	} `json:"props"`
}

type nextDataListing struct {
	ListingID flexID          `json:"listingId"`
	Title     string          `json:"title"`
	Address   string          `json:"address"`
	Price     string          `json:"price"`
	Features  json.RawMessage `json:"features"`
	Branch    struct {
		Name string `json:"name"`
	} `json:"branch"`
}

// featureText renders the features field, which the portal serves as
// either a string or a list of strings.
func (l nextDataListing) featureText() string {
	if len(l.Features) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(l.Features, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(l.Features, &many); err == nil {
		return strings.Join(many, " ")
	}
	return ""
}

// flexID accepts a JSON number or string identifier.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("listing id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}
