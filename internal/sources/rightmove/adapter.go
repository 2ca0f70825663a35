// Package rightmove implements the Rightmove portal adapter.
//
// Rightmove server-renders search results into a __NEXT_DATA__ JSON blob,
// so the adapter resolves the portal's internal location identifier first,
// then fetches the filtered result page and decodes the blob. No HTML
// selectors are involved beyond locating the script tag.
package rightmove

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/sources"
)

// SourceID is the registry identifier for this adapter.
const SourceID = "rightmove"

// DefaultBaseURL is the production portal URL.
const DefaultBaseURL = "https://www.rightmove.co.uk"

// allowedRadii are the radius values the portal's search accepts, in miles.
var allowedRadii = []float64{0.25, 0.5, 1, 3, 5, 10, 15, 20, 30, 40}

// Config holds adapter configuration.
type Config struct {
	// BaseURL overrides the portal URL. Used by tests.
	BaseURL string

	// Client is the shared throttled HTTP client.
	Client *sources.Client
}

// Adapter implements driven.SourceAdapter for Rightmove.
type Adapter struct {
	baseURL string
	client  *sources.Client
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates a Rightmove adapter.
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
	locationID, err := a.resolveLocation(ctx, location)
	if err != nil {
		return nil, err
	}

	doc, err := a.client.Document(ctx, a.searchURL(locationID, filters))
	if err != nil {
		return nil, err
	}

	blob, err := sources.NextData(doc)
	if err != nil {
		return nil, err
	}

	var page nextDataPage
	if err := json.Unmarshal(blob, &page); err != nil {
		return nil, fmt.Errorf("%w: decoding __NEXT_DATA__: %v", domain.ErrSourceFailed, err)
	}

	results := page.Props.PageProps.SearchResults.Properties
	listings := make([]domain.RawListing, 0, len(results))
	for _, p := range results {
		detailURL := p.PropertyURL
		if strings.HasPrefix(detailURL, "/") {
			detailURL = a.baseURL + detailURL
		}
		listings = append(listings, domain.RawListing{
			SourceID:    SourceID,
			URL:         detailURL,
			Title:       p.PropertyTypeFullDescription,
			Description: p.Summary,
			PriceText:   p.Price.display(),
			Address:     p.DisplayAddress,
			Tenure:      p.Tenure.TenureType,
			Agent:       p.Customer.BranchDisplayName,
		})
	}
	return listings, nil
}

// resolveLocation turns a free-text location into the portal's internal
// location identifier. The portal redirects a plain search to a result
// URL carrying locationIdentifier, so one GET and the final URL is enough.
func (a *Adapter) resolveLocation(ctx context.Context, location string) (string, error) {
	searchURL := a.baseURL + "/property-for-sale/search.html?searchLocation=" + url.QueryEscape(location)
	resp, err := a.client.Get(ctx, searchURL)
	if err != nil {
		return "", err
	}
	resp.Body.Close()

	locationID := resp.Request.URL.Query().Get("locationIdentifier")
	if locationID == "" {
		return "", fmt.Errorf("%w: could not resolve location %q", domain.ErrSourceFailed, location)
	}
	return locationID, nil
}

// searchURL builds the filtered result page URL.
func (a *Adapter) searchURL(locationID string, filters driven.FetchFilters) string {
	q := url.Values{}
	q.Set("locationIdentifier", locationID)
	q.Set("radius", strconv.FormatFloat(snapRadius(filters.Radius), 'f', -1, 64))
	q.Set("sortType", "1")
	q.Set("includeSSTC", "false")
	if filters.MaxPrice > 0 {
		q.Set("maxPrice", strconv.Itoa(filters.MaxPrice))
	}
	if filters.MinPrice > 0 {
		q.Set("minPrice", strconv.Itoa(filters.MinPrice))
	}
	return a.baseURL + "/property-for-sale/find.html?" + q.Encode()
}

// snapRadius snaps to the nearest radius the portal accepts.
func snapRadius(radius float64) float64 {
	best := allowedRadii[0]
	for _, r := range allowedRadii {
		if math.Abs(r-radius) < math.Abs(best-radius) {
			best = r
		}
	}
	return best
}

// nextDataPage mirrors the slice of the __NEXT_DATA__ blob we care about.
type nextDataPage struct {
	Props struct {
		PageProps struct {
			SearchResults struct {
				Properties []nextDataProperty `json:"properties"`
			} `json:"searchResults"`
		} `json:"pageProps"`
	} `json:"props"`
}

type nextDataProperty struct {
	DisplayAddress              string        `json:"displayAddress"`
	PropertyTypeFullDescription string        `json:"propertyTypeFullDescription"`
	Summary                     string        `json:"summary"`
	PropertyURL                 string        `json:"propertyUrl"`
	Price                       nextDataPrice `json:"price"`
	Tenure                      struct {
		TenureType string `json:"tenureType"`
	} `json:"tenure"`
	Customer struct {
		BranchDisplayName string `json:"branchDisplayName"`
	} `json:"customer"`
}

type nextDataPrice struct {
	Amount        float64 `json:"amount"`
	DisplayPrices []struct {
		DisplayPrice string `json:"displayPrice"`
	} `json:"displayPrices"`
}

// display returns the portal's display price, falling back to the
// numeric amount.
func (p nextDataPrice) display() string {
	if len(p.DisplayPrices) > 0 && p.DisplayPrices[0].DisplayPrice != "" {
		return p.DisplayPrices[0].DisplayPrice
	}
	if p.Amount > 0 {
		return fmt.Sprintf("£%.0f", p.Amount)
	}
	return ""
}
