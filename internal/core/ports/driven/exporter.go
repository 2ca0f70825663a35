package driven

import (
	"context"

	"github.com/propscout/propscout-cli/internal/core/domain"
)

// ResultExporter writes a result document for downstream consumers
// (JSON data file for the web viewer, CSV for spreadsheets).
type ResultExporter interface {
	// Export writes the document and returns the path it was written to.
	Export(ctx context.Context, doc *domain.ResultDocument) (string, error)
}
