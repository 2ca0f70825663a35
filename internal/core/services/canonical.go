package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/logger"
)

// Canonicaliser merges raw listings from every source and round into
// one deduplicated property set keyed by canonical URL.
type Canonicaliser struct{}

// NewCanonicaliser creates a canonicaliser.
func NewCanonicaliser() *Canonicaliser {
	return &Canonicaliser{}
}

// Merge deduplicates raw listings by identity key and coerces fields
// to their typed forms. It returns the merged properties and the count
// of listings dropped for lacking a usable URL.
//
// Merge policy: scalar fields come from the first-seen listing for a
// key, except the price, which comes from the first contributing
// listing whose price parses to a number. The contributing-sources set
// is the union. The policy depends on input order; callers that need
// determinism must feed listings in a deterministic order, which the
// orchestrator does (rounds in sequence, units by completion within a
// round, listings in source order within a unit).
//
// Merge is idempotent: feeding its output back through produces the
// same identity key set.
func (c *Canonicaliser) Merge(raws []domain.RawListing) ([]domain.Property, int) {
	byKey := make(map[string]*domain.Property)
	order := make([]string, 0, len(raws))
	dropped := 0

	for i := range raws {
		raw := &raws[i]
		key, err := raw.IdentityKey()
		if err != nil {
			dropped++
			logger.Debug("Dropping listing without identity key from %s: %q", raw.SourceID, raw.URL)
			continue
		}

		existing, ok := byKey[key]
		if !ok {
			prop := c.coerce(raw, key)
			byKey[key] = prop
			order = append(order, key)
			continue
		}

		// Duplicate across sources or rounds. First-seen fields win;
		// only the source set grows, plus the price when the first
		// listing had none and this one parses.
		if !existing.FromSource(raw.SourceID) {
			existing.Sources = append(existing.Sources, raw.SourceID)
			sort.Strings(existing.Sources)
		}
		if existing.Price == nil {
			if price, ok := ParsePrice(raw.PriceText); ok {
				existing.Price = &price
				existing.PriceDisplay = strings.TrimSpace(raw.PriceText)
			}
		}
	}

	merged := make([]domain.Property, 0, len(order))
	for _, key := range order {
		merged = append(merged, *byKey[key])
	}
	return merged, dropped
}

// coerce builds a typed property from a single raw listing.
func (c *Canonicaliser) coerce(raw *domain.RawListing, key string) *domain.Property {
	prop := &domain.Property{
		Key:          key,
		URL:          raw.URL,
		Title:        strings.TrimSpace(raw.Title),
		Description:  strings.TrimSpace(raw.Description),
		Address:      strings.TrimSpace(raw.Address),
		Agent:        strings.TrimSpace(raw.Agent),
		PriceDisplay: strings.TrimSpace(raw.PriceText),
		Sources:      []string{raw.SourceID},
		Location:     raw.Location,
	}

	if price, ok := ParsePrice(raw.PriceText); ok {
		prop.Price = &price
	}

	text := prop.Title + " " + prop.Description
	prop.Tenure = coerceTenure(raw.Tenure, text)
	prop.Type = InferType(text)

	return prop
}

// coerceTenure prefers an explicit tenure field over text inference.
// Shared-ownership wording overrides a stated tenure either way: the
// buyer never owns the whole asset, whatever the title says.
func coerceTenure(stated, text string) domain.Tenure {
	if IsSharedOwnership(text) {
		return domain.TenureLeasehold
	}
	switch strings.ToLower(strings.TrimSpace(stated)) {
	case "freehold":
		return domain.TenureFreehold
	case "leasehold", "share of freehold":
		return domain.TenureLeasehold
	}
	return InferTenure(text)
}

// poaMarkers identify price strings with no usable number. Guide
// prices are treated the same as price-on-application for filtering:
// they are non-binding.
var poaMarkers = []string{
	"poa",
	"price on application",
	"price on request",
	"offers invited",
	"guide price",
}

// ParsePrice extracts a positive whole-pound price from a display
// string. Returns false for POA-style entries and anything without a
// parseable number.
func ParsePrice(text string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, false
	}
	for _, marker := range poaMarkers {
		if strings.Contains(lower, marker) {
			return 0, false
		}
	}

	// Take the first digit run, allowing thousands separators.
	var digits strings.Builder
	seen := false
	for _, r := range lower {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
			seen = true
		case r == ',' && seen:
			// separator inside a number
		case seen:
			// end of the first number
			goto done
		}
	}
done:
	if !seen {
		return 0, false
	}
	price, err := strconv.Atoi(digits.String())
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
