// Package nestoria implements the Nestoria listings aggregator adapter.
//
// Nestoria exposes a public JSON API, making it the only source that needs
// no HTML parsing at all.
package nestoria

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/sources"
)

// SourceID is the registry identifier for this adapter.
const SourceID = "nestoria"

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.nestoria.co.uk/api"

const (
	// milesToKM converts the pipeline's radius to the API's unit.
	milesToKM = 1.60934

	// maxRadiusKM is the largest radius the API accepts.
	maxRadiusKM = 50.0

	// resultsPerFetch is the page size requested from the API.
	resultsPerFetch = 50
)

// Config holds adapter configuration.
type Config struct {
	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string

	// Client is the shared throttled HTTP client.
	Client *sources.Client
}

// Adapter implements driven.SourceAdapter for the Nestoria API.
type Adapter struct {
	baseURL string
	client  *sources.Client
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates a Nestoria adapter.
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
	var payload apiResponse
	if err := a.client.JSON(ctx, a.searchURL(location, filters), &payload); err != nil {
		return nil, err
	}

	// 100 = OK, 101 = OK but no results, 110 = OK with spelling correction
	code := payload.Response.ApplicationResponseCode
	switch code {
	case "100", "101", "110":
	default:
		return nil, fmt.Errorf("%w: nestoria response code %s", domain.ErrSourceFailed, code)
	}

	var listings []domain.RawListing
	for _, l := range payload.Response.Listings {
		if l.ListerURL == "" {
			continue
		}
		listings = append(listings, domain.RawListing{
			SourceID:    SourceID,
			URL:         l.ListerURL,
			Title:       l.headline(),
			Description: strings.TrimSpace(l.Title + ". " + l.Summary),
			PriceText:   l.priceDisplay(),
			Address:     l.Title,
			Agent:       l.DatasourceName,
		})
	}
	return listings, nil
}

// searchURL builds the API query.
func (a *Adapter) searchURL(location string, filters driven.FetchFilters) string {
	q := url.Values{}
	q.Set("action", "search_listings")
	q.Set("country", "uk")
	q.Set("encoding", "json")
	q.Set("listing_type", "buy")
	q.Set("place_name", location)
	q.Set("number_of_results", strconv.Itoa(resultsPerFetch))
	q.Set("sort", "price_lowhigh")
	if filters.MaxPrice > 0 {
		q.Set("price_max", strconv.Itoa(filters.MaxPrice))
	}
	if filters.MinPrice > 0 {
		q.Set("price_min", strconv.Itoa(filters.MinPrice))
	}
	if filters.Radius > 0 {
		km := filters.Radius * milesToKM
		if km > maxRadiusKM {
			km = maxRadiusKM
		}
		q.Set("radius", strconv.FormatFloat(km, 'f', 1, 64))
	}
	return a.baseURL + "?" + q.Encode()
}

// apiResponse mirrors the slice of the API payload we care about.
type apiResponse struct {
	Response struct {
		ApplicationResponseCode string       `json:"application_response_code"`
		Listings                []apiListing `json:"listings"`
	} `json:"response"`
}

type apiListing struct {
	Title          string      `json:"title"`
	Summary        string      `json:"summary"`
	Price          float64     `json:"price"`
	PriceFormatted string      `json:"price_formatted"`
	BedroomNumber  json.Number `json:"bedroom_number"`
	PropertyType   string      `json:"property_type"`
	ListerURL      string      `json:"lister_url"`
	DatasourceName string      `json:"datasource_name"`
}

// headline builds a listing title from bedrooms and property type.
func (l apiListing) headline() string {
	propType := l.PropertyType
	if propType == "" {
		propType = "property"
	}
	if beds := l.BedroomNumber.String(); beds != "" && beds != "0" {
		return fmt.Sprintf("%s bed %s", beds, propType)
	}
	return propType
}

// priceDisplay prefers the API's formatted price.
func (l apiListing) priceDisplay() string {
	if l.PriceFormatted != "" {
		return l.PriceFormatted
	}
	if l.Price > 0 {
		return fmt.Sprintf("£%.0f", l.Price)
	}
	return "POA"
}
