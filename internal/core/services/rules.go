package services

import (
	"strings"

	"github.com/propscout/propscout-cli/internal/core/domain"
)

// RuleTier partitions scoring terms by severity.
type RuleTier int

const (
	// TierHigh terms indicate distressed stock (repossessions, fire
	// damage, condemned buildings). Each match contributes WeightHigh.
	TierHigh RuleTier = iota
	// TierMedium terms indicate renovation potential. Each match
	// contributes WeightMedium.
	TierMedium
)

// Rule weights. Weights accumulate per distinct matched term; the
// final score is clamped to the domain range after accumulation.
const (
	WeightHigh   = 3.0
	WeightMedium = 1.5

	// LandPenalty pushes land-only plots below residential stock.
	LandPenalty = -10.0
)

// ScoringRule maps a lower-cased search term to a tier.
// Rules are matched as case-insensitive substrings of title+description.
type ScoringRule struct {
	Term string
	Tier RuleTier
}

// scoringRules is the single source of truth for keyword scoring.
// Both the scorer and category derivation consume this table; no
// other component hard-codes term lists.
var scoringRules = []ScoringRule{
	// Distressed indicators.
	{Term: "auction", Tier: TierHigh},
	{Term: "repossession", Tier: TierHigh},
	{Term: "eviction", Tier: TierHigh},
	{Term: "unlivable", Tier: TierHigh},
	{Term: "uninhabitable", Tier: TierHigh},
	{Term: "fire damage", Tier: TierHigh},
	{Term: "water damage", Tier: TierHigh},
	{Term: "vandalised", Tier: TierHigh},
	{Term: "condemned", Tier: TierHigh},
	{Term: "dangerous", Tier: TierHigh},
	{Term: "unsafe", Tier: TierHigh},
	{Term: "gutted", Tier: TierHigh},
	{Term: "squatters", Tier: TierHigh},
	{Term: "derelict", Tier: TierHigh},
	{Term: "structural", Tier: TierHigh},

	// Renovation indicators.
	{Term: "modernisation", Tier: TierMedium},
	{Term: "refurbishment", Tier: TierMedium},
	{Term: "renovation", Tier: TierMedium},
	{Term: "repair", Tier: TierMedium},
	{Term: "fixer upper", Tier: TierMedium},
	{Term: "fixer-upper", Tier: TierMedium},
	{Term: "unmodernised", Tier: TierMedium},
	{Term: "cash buyers", Tier: TierMedium},
	{Term: "development opportunity", Tier: TierMedium},
	{Term: "investment opportunity", Tier: TierMedium},
	{Term: "planning permission", Tier: TierMedium},
	{Term: "in need of", Tier: TierMedium},
	{Term: "project", Tier: TierMedium},
	{Term: "shell", Tier: TierMedium},
}

// auctionTerms mark a listing as auction stock even when it arrived
// via a residential portal. "lot " keeps its trailing space so that
// "lottery" and "a lot of" don't match.
var auctionTerms = []string{
	"guide price",
	"reserve price",
	"for sale by auction",
	"auction date",
	"lot ",
}

// landTerms identify plots without habitable buildings.
var landTerms = []string{
	"building plot",
	"land for sale",
	"plot of land",
	"grazing land",
	"paddock",
	"development land",
	"land only",
}

// flatTerms identify flats and apartments.
var flatTerms = []string{
	"flat",
	"apartment",
	"maisonette",
	"studio",
	"penthouse",
}

// sharedOwnershipTerms trigger the same hard exclusion as leasehold
// tenure: the buyer never owns the whole asset.
var sharedOwnershipTerms = []string{
	"shared ownership",
	"shared equity",
	"part buy part rent",
}

// MatchRules returns every rule whose term occurs in text.
// Matching is case-insensitive; each rule matches at most once.
func MatchRules(text string) []ScoringRule {
	lower := strings.ToLower(text)
	var matched []ScoringRule
	for _, rule := range scoringRules {
		if strings.Contains(lower, rule.Term) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// Weight returns the score contribution for a tier.
func (t RuleTier) Weight() float64 {
	if t == TierHigh {
		return WeightHigh
	}
	return WeightMedium
}

// IsSharedOwnership reports whether text carries shared-ownership
// wording.
func IsSharedOwnership(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range sharedOwnershipTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// InferTenure scans text for an explicit tenure statement. Shared
// ownership counts as leasehold for exclusion purposes.
func InferTenure(text string) domain.Tenure {
	if IsSharedOwnership(text) {
		return domain.TenureLeasehold
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "leasehold"):
		return domain.TenureLeasehold
	case strings.Contains(lower, "freehold"):
		return domain.TenureFreehold
	default:
		return domain.TenureUnknown
	}
}

// InferType classifies a listing as land, flat or house from its
// text. Land terms win over flat terms: "building plot near modern
// apartments" is a plot, not a flat. Anything not recognisably land
// or a flat defaults to house.
func InferType(text string) domain.PropertyType {
	lower := strings.ToLower(text)
	for _, term := range landTerms {
		if strings.Contains(lower, term) {
			return domain.TypeLand
		}
	}
	for _, term := range flatTerms {
		if strings.Contains(lower, term) {
			return domain.TypeFlat
		}
	}
	return domain.TypeHouse
}

// IsAuctionListing reports whether the listing text carries
// auction-indicative wording.
func IsAuctionListing(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range auctionTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
