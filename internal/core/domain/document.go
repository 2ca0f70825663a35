package domain

import "time"

// ResultDocument is the persisted output of a pipeline run. It is the sole
// handoff to any presentation layer (CLI table, file export, web viewer)
// and must be parseable without re-running the pipeline.
type ResultDocument struct {
	// LastUpdated is when the run producing the document completed.
	LastUpdated time.Time `json:"lastUpdated"`

	// Locations are the distinct location labels present, in result order.
	Locations []string `json:"locations"`

	// TotalCount is len(Properties).
	TotalCount int `json:"totalCount"`

	// Categories counts properties per category tag.
	Categories map[Category]int `json:"categories,omitempty"`

	// Properties is the ordered result set: ascending price, ties broken
	// by descending score.
	Properties []PropertyRecord `json:"properties"`
}

// PropertyRecord is the export form of a scored property.
type PropertyRecord struct {
	Title        string       `json:"title"`
	Price        *int         `json:"price,omitempty"`
	PriceDisplay string       `json:"price_display,omitempty"`
	Address      string       `json:"address"`
	Location     string       `json:"location"`
	Description  string       `json:"description"`
	URL          string       `json:"url"`
	Agent        string       `json:"agent"`
	Tenure       Tenure       `json:"tenure"`
	Type         PropertyType `json:"type"`
	Sources      []string     `json:"sources"`
	Score        float64      `json:"score"`
	Category     Category     `json:"category"`
	Rationale    string       `json:"rationale,omitempty"`

	// Area-comparison enrichment, present when the enricher resolved the
	// property's outcode.
	ROI          *float64 `json:"roi,omitempty"`
	AvgAreaRent  *float64 `json:"avg_area_rent,omitempty"`
	AvgAreaPrice *float64 `json:"avg_area_price,omitempty"`
}
