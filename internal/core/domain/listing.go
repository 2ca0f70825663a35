package domain

// RawListing is a listing exactly as a source adapter extracted it.
// Fields are untyped strings; coercion to typed forms happens in the
// canonicaliser. RawListings are ephemeral and never persisted directly.
type RawListing struct {
	// SourceID identifies the adapter that produced the listing.
	SourceID string

	// URL is the detail-page URL. It is the primary identity key for
	// deduplication; listings without one are dropped.
	URL string

	// Title is the listing headline, e.g. "3 bedroom terraced house".
	Title string

	// Description is the free-text summary from the listing card or page.
	Description string

	// PriceText is the display price as shown by the source.
	// Examples: "£85,000", "Guide Price £25,000+", "POA".
	PriceText string

	// Address is the display address string.
	Address string

	// Tenure is the tenure string where the source states one ("Freehold",
	// "Leasehold"). Empty when the source does not expose it.
	Tenure string

	// Agent is the estate agent or auctioneer name.
	Agent string

	// Location is the search location label that produced the listing.
	// Stamped by the orchestrator, not by adapters.
	Location string
}
