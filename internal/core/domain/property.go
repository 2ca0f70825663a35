package domain

import (
	"net/url"
	"strings"
)

// Tenure is the UK ownership form of a property.
type Tenure string

// Tenure values.
const (
	TenureFreehold  Tenure = "freehold"
	TenureLeasehold Tenure = "leasehold"
	TenureUnknown   Tenure = "unknown"
)

// PropertyType classifies a listing by what is actually for sale.
type PropertyType string

// PropertyType values.
const (
	TypeHouse PropertyType = "house"
	TypeFlat  PropertyType = "flat"
	TypeLand  PropertyType = "land"
)

// Residential reports whether the type counts towards the residential
// yield used by smart radius expansion.
func (t PropertyType) Residential() bool {
	return t == TypeHouse || t == TypeFlat
}

// Property is the canonical, deduplicated form of one or more RawListings
// that share an identity key. Once scored it is immutable except for the
// attached ScoreResult.
type Property struct {
	// Key is the stable identity key derived from the canonical URL.
	Key string

	// URL is the detail-page URL of the first contributing listing.
	URL string

	// Title, Description, Address and Agent come from the first-seen
	// contributing listing (see Canonicaliser for the merge policy).
	Title       string
	Description string
	Address     string
	Agent       string

	// Price is the asking price in whole pounds. Nil for price-on-application
	// and guide-price-only auction entries.
	Price *int

	// PriceDisplay preserves the source's display string ("Guide Price
	// £25,000+", "POA") alongside the parsed integer.
	PriceDisplay string

	// Tenure is the coerced tenure, inferred from text when not stated.
	Tenure Tenure

	// Type is the inferred property type.
	Type PropertyType

	// Sources is the set of adapter IDs that contributed a listing,
	// sorted, at least one entry.
	Sources []string

	// Location is the search location label that produced the property.
	Location string

	// Score is attached by the scorer. Nil until scored.
	Score *ScoreResult
}

// FromSource reports whether the given adapter contributed to this property.
func (p *Property) FromSource(sourceID string) bool {
	for _, s := range p.Sources {
		if s == sourceID {
			return true
		}
	}
	return false
}

// trackingParams never distinguish listings; they are stripped wholesale
// with the rest of the query string by CanonicalURL.

// CanonicalURL normalises a detail-page URL into its identity form:
// lower-cased, query string and fragment stripped, trailing slash removed.
// Returns ErrMissingIdentityKey for empty or unparseable input and for
// URLs with no host.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingIdentityKey
	}

	u, err := url.Parse(strings.ToLower(raw))
	if err != nil || u.Host == "" {
		return "", ErrMissingIdentityKey
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String(), nil
}

// IdentityKey derives the deduplication key for a raw listing.
func (l *RawListing) IdentityKey() (string, error) {
	return CanonicalURL(l.URL)
}
