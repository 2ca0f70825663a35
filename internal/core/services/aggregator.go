package services

import (
	"sort"
	"time"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/logger"
)

// Aggregator applies the request's final policy filters, orders the
// result set and builds the exportable result document.
type Aggregator struct {
	registry driven.AdapterRegistry
}

// NewAggregator creates an aggregator. The registry is consulted for
// auction detection: a property contributed by an auction-house
// adapter is auction stock regardless of its wording.
func NewAggregator(registry driven.AdapterRegistry) *Aggregator {
	return &Aggregator{registry: registry}
}

// Apply filters and orders scored properties per the request policy.
// Ordering: ascending by price, properties without a parseable price
// last, ties broken by descending score.
func (a *Aggregator) Apply(req domain.SearchRequest, props []domain.Property) []domain.Property {
	kept := make([]domain.Property, 0, len(props))
	for i := range props {
		if a.admit(req, &props[i]) {
			kept = append(kept, props[i])
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		pi, pj := kept[i].Price, kept[j].Price
		switch {
		case pi == nil && pj == nil:
			return scoreOf(&kept[i]) > scoreOf(&kept[j])
		case pi == nil:
			return false
		case pj == nil:
			return true
		case *pi != *pj:
			return *pi < *pj
		default:
			return scoreOf(&kept[i]) > scoreOf(&kept[j])
		}
	})

	if dropped := len(props) - len(kept); dropped > 0 {
		logger.Debug("Policy filters removed %d of %d properties", dropped, len(props))
	}
	return kept
}

// admit checks one property against every policy filter.
func (a *Aggregator) admit(req domain.SearchRequest, p *domain.Property) bool {
	// Hard leasehold / shared-ownership exclusion.
	if !req.AllowLeasehold && p.Tenure == domain.TenureLeasehold {
		return false
	}
	if !req.WantsTenure(p.Tenure) {
		return false
	}
	if !req.WantsType(p.Type) {
		return false
	}
	if req.ExcludeLand && p.Type == domain.TypeLand {
		return false
	}
	if req.ExcludeAuctions && a.isAuction(p) {
		return false
	}
	if p.Price != nil {
		if req.MinPrice > 0 && *p.Price < req.MinPrice {
			return false
		}
		if req.MaxPrice > 0 && *p.Price > req.MaxPrice {
			return false
		}
	}
	return true
}

// isAuction applies the auction detection rule: contributed by an
// auction-house source, or auction-indicative wording in the text.
func (a *Aggregator) isAuction(p *domain.Property) bool {
	for _, id := range p.Sources {
		adapter, err := a.registry.Get(id)
		if err != nil {
			continue
		}
		if adapter.Capabilities().Auction {
			return true
		}
	}
	return IsAuctionListing(p.Title + " " + p.Description)
}

// Document builds the stable result document handed to every
// presentation layer. Properties must already be filtered and ordered.
func (a *Aggregator) Document(props []domain.Property) *domain.ResultDocument {
	doc := &domain.ResultDocument{
		LastUpdated: time.Now().UTC(),
		TotalCount:  len(props),
		Categories:  make(map[domain.Category]int),
		Properties:  make([]domain.PropertyRecord, 0, len(props)),
	}

	seen := make(map[string]bool)
	for i := range props {
		p := &props[i]
		if p.Location != "" && !seen[p.Location] {
			seen[p.Location] = true
			doc.Locations = append(doc.Locations, p.Location)
		}

		record := domain.PropertyRecord{
			Title:        p.Title,
			Price:        p.Price,
			PriceDisplay: p.PriceDisplay,
			Address:      p.Address,
			Location:     p.Location,
			Description:  p.Description,
			URL:          p.URL,
			Agent:        p.Agent,
			Tenure:       p.Tenure,
			Type:         p.Type,
			Sources:      p.Sources,
		}
		if p.Score != nil {
			record.Score = p.Score.Score
			record.Category = p.Score.Category
			record.Rationale = p.Score.Rationale
			doc.Categories[p.Score.Category]++
		}
		doc.Properties = append(doc.Properties, record)
	}

	return doc
}

func scoreOf(p *domain.Property) float64 {
	if p.Score == nil {
		return 0
	}
	return p.Score.Score
}
