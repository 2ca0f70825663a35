// Package web provides an AreaStatsProvider that reads public market pages.
//
// Average sold prices come from the Zoopla house-prices page for the
// outcode, average rents from Home.co.uk. Both pages state the figure in
// prose, so the provider matches the sentence rather than the markup.
package web

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/sources"
)

// Default page locations.
const (
	DefaultPriceBaseURL = "https://www.zoopla.co.uk/house-prices"
	DefaultRentBaseURL  = "https://www.home.co.uk/rental-prices/postcode"
)

var (
	avgPriceRe = regexp.MustCompile(`(?is)average sold price.*?£([\d,]+)`)
	avgRentRe  = regexp.MustCompile(`(?is)average rent.*?£([\d,]+)`)
)

// Config holds provider configuration.
type Config struct {
	// PriceBaseURL and RentBaseURL override the page locations. Used by tests.
	PriceBaseURL string
	RentBaseURL  string

	// Client is the shared throttled HTTP client.
	Client *sources.Client
}

// Provider implements driven.AreaStatsProvider over public market pages.
type Provider struct {
	priceBaseURL string
	rentBaseURL  string
	client       *sources.Client
}

var _ driven.AreaStatsProvider = (*Provider)(nil)

// New creates a web-backed area stats provider.
func New(cfg Config) *Provider {
	if cfg.PriceBaseURL == "" {
		cfg.PriceBaseURL = DefaultPriceBaseURL
	}
	if cfg.RentBaseURL == "" {
		cfg.RentBaseURL = DefaultRentBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = sources.NewClient()
	}
	return &Provider{
		priceBaseURL: strings.TrimSuffix(cfg.PriceBaseURL, "/"),
		rentBaseURL:  strings.TrimSuffix(cfg.RentBaseURL, "/"),
		client:       cfg.Client,
	}
}

// Stats returns the market averages for an outcode. A figure the pages do
// not state comes back nil; the error is reserved for both lookups failing
// outright.
func (p *Provider) Stats(ctx context.Context, outcode string) (driven.AreaStats, error) {
	outcode = strings.ToUpper(strings.TrimSpace(outcode))

	price, priceErr := p.fetchFigure(ctx, p.priceBaseURL+"/"+outcode+"/", avgPriceRe)
	rent, rentErr := p.fetchFigure(ctx, p.rentBaseURL+"/"+outcode+"/current", avgRentRe)

	if priceErr != nil && rentErr != nil {
		return driven.AreaStats{}, priceErr
	}

	return driven.AreaStats{
		Outcode:   outcode,
		AvgPrice:  price,
		AvgRent:   rent,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// fetchFigure loads a page and pulls the first figure the pattern matches
// out of its visible text. A page without the sentence yields nil.
func (p *Provider) fetchFigure(ctx context.Context, pageURL string, re *regexp.Regexp) (*float64, error) {
	doc, err := p.client.Document(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return extractFigure(doc, re), nil
}

func extractFigure(doc *goquery.Document, re *regexp.Regexp) *float64 {
	match := re.FindStringSubmatch(doc.Text())
	if match == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}
