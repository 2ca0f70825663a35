// Package csvfile writes result documents as CSV files for
// spreadsheet triage.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.ResultExporter = (*Exporter)(nil)

// header is the CSV column order.
var header = []string{
	"title",
	"price",
	"price_display",
	"address",
	"location",
	"url",
	"agent",
	"tenure",
	"type",
	"sources",
	"score",
	"category",
	"roi",
}

// DefaultFileName is used when the exporter is given a directory.
const DefaultFileName = "results.csv"

// Exporter writes result documents to a CSV file.
type Exporter struct {
	path string
}

// New creates a CSV exporter targeting path. A path ending in a
// separator or naming an existing directory gets DefaultFileName
// appended.
func New(path string) *Exporter {
	switch {
	case path == "":
		path = DefaultFileName
	default:
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, DefaultFileName)
		} else if os.IsPathSeparator(path[len(path)-1]) {
			path = filepath.Join(path, DefaultFileName)
		}
	}
	return &Exporter{path: path}
}

// Export writes one row per property and returns the path written.
func (e *Exporter) Export(_ context.Context, doc *domain.ResultDocument) (string, error) {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(e.path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for i := range doc.Properties {
		if err := w.Write(row(&doc.Properties[i])); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return e.path, nil
}

func row(p *domain.PropertyRecord) []string {
	price := ""
	if p.Price != nil {
		price = strconv.Itoa(*p.Price)
	}
	roi := ""
	if p.ROI != nil {
		roi = strconv.FormatFloat(*p.ROI, 'f', 2, 64)
	}
	return []string{
		p.Title,
		price,
		p.PriceDisplay,
		p.Address,
		p.Location,
		p.URL,
		p.Agent,
		string(p.Tenure),
		string(p.Type),
		strings.Join(p.Sources, ";"),
		strconv.FormatFloat(p.Score, 'f', 1, 64),
		string(p.Category),
		roi,
	}
}
