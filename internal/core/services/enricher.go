package services

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/logger"
)

// CacheExpiry is how long cached area stats stay fresh. Market
// averages move slowly; a week keeps external lookups rare.
const CacheExpiry = 7 * 24 * time.Hour

// outcodeRe matches the first half of a UK postcode, e.g. "L1", "M14",
// "SW1A". The last match in an address wins: street names can contain
// outcode-shaped tokens but the postcode comes at the end.
var outcodeRe = regexp.MustCompile(`\b([A-Z]{1,2}[0-9][0-9A-Z]?)\b`)

// Enricher attaches area-comparison figures (average sold price,
// average rent, gross rental ROI) to a result document. Both the
// provider and the cache are optional; without a provider only cached
// figures are used, and without either the document passes through
// untouched.
type Enricher struct {
	provider driven.AreaStatsProvider
	cache    driven.AreaStatsCache
}

// NewEnricher creates an enricher. provider and cache may be nil.
func NewEnricher(provider driven.AreaStatsProvider, cache driven.AreaStatsCache) *Enricher {
	return &Enricher{provider: provider, cache: cache}
}

// Outcode extracts the UK outcode from an address string, or "" when
// none is present.
func Outcode(address string) string {
	matches := outcodeRe.FindAllStringSubmatch(strings.ToUpper(address), -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

// Enrich resolves area stats for every distinct outcode in the
// document and attaches avg_area_price, avg_area_rent and ROI to the
// matching records. Lookup failures skip the record, never fail the
// run. ROI = annual rent / asking price x 100, rounded to 2dp.
func (e *Enricher) Enrich(ctx context.Context, doc *domain.ResultDocument) {
	if e.provider == nil && e.cache == nil {
		return
	}

	stats := make(map[string]driven.AreaStats)
	for i := range doc.Properties {
		record := &doc.Properties[i]
		outcode := Outcode(record.Address)
		if outcode == "" {
			continue
		}

		s, ok := stats[outcode]
		if !ok {
			var err error
			s, err = e.resolve(ctx, outcode)
			if err != nil {
				logger.Debug("Area stats unavailable for %s: %v", outcode, err)
				continue
			}
			stats[outcode] = s
		}

		record.AvgAreaPrice = s.AvgPrice
		record.AvgAreaRent = s.AvgRent

		if record.Price != nil && *record.Price > 0 && s.AvgRent != nil {
			annual := *s.AvgRent * 12
			roi := math.Round(annual/float64(*record.Price)*100*100) / 100
			record.ROI = &roi
		}
	}
}

// resolve returns fresh stats for an outcode, preferring an unexpired
// cache entry over an external lookup. Fetched stats are written back
// to the cache, including partial results so a flaky provider is not
// hammered every run.
func (e *Enricher) resolve(ctx context.Context, outcode string) (driven.AreaStats, error) {
	if e.cache != nil {
		cached, err := e.cache.Get(ctx, outcode)
		switch {
		case err == nil && e.fresh(cached):
			return cached, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			logger.Debug("Area stats cache read failed for %s: %v", outcode, err)
		}
	}

	if e.provider == nil {
		return driven.AreaStats{}, domain.ErrNotFound
	}

	stats, err := e.provider.Stats(ctx, outcode)
	if err != nil {
		return driven.AreaStats{}, err
	}
	stats.Outcode = outcode
	stats.FetchedAt = time.Now()

	if e.cache != nil {
		if err := e.cache.Put(ctx, stats); err != nil {
			logger.Debug("Area stats cache write failed for %s: %v", outcode, err)
		}
	}
	return stats, nil
}

// fresh reports whether a cache entry is complete and unexpired.
// Entries missing either figure are refetched regardless of age.
func (e *Enricher) fresh(s driven.AreaStats) bool {
	if s.AvgPrice == nil || s.AvgRent == nil {
		return false
	}
	return time.Since(s.FetchedAt) < CacheExpiry
}
