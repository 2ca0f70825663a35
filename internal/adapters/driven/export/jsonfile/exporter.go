// Package jsonfile writes result documents as JSON files. The output
// is the stable pipeline handoff: the web viewer and any downstream
// tooling parse it without re-running a search.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.ResultExporter = (*Exporter)(nil)

// DefaultFileName is used when the exporter is given a directory.
const DefaultFileName = "results.json"

// Exporter writes result documents to a JSON file.
type Exporter struct {
	path string
}

// New creates a JSON exporter targeting path. A path ending in a
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

// Export writes the document and returns the path written. The write
// goes through a temp file and rename so a crash never leaves a
// half-written document for the viewer to choke on.
func (e *Exporter) Export(_ context.Context, doc *domain.ResultDocument) (string, error) {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		return "", fmt.Errorf("replace document: %w", err)
	}

	return e.path, nil
}
