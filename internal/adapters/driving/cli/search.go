package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/propscout/propscout-cli/internal/adapters/driven/export/csvfile"
	"github.com/propscout/propscout-cli/internal/adapters/driven/export/jsonfile"
	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

var (
	searchRadius          float64
	searchMinPrice        int
	searchMaxPrice        int
	searchSources         []string
	searchExcludeLand     bool
	searchExcludeAuctions bool
	searchAllowLeasehold  bool
	searchSemantic        bool
	searchLimit           int
	searchJSON            bool
	searchCSV             bool
	searchOutput          string
)

var searchCmd = &cobra.Command{
	Use:   "search [location...]",
	Short: "Search for below-market-value listings",
	Long: `Runs the aggregation pipeline for one or more locations.
Listings are fetched from every selected source, deduplicated across
portals, scored for below-market-value signals and printed in ascending
price order. The named location "england" expands to the nationwide
city catalogue.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Float64VarP(&searchRadius, "radius", "r", 5, "search radius in miles")
	searchCmd.Flags().IntVar(&searchMinPrice, "min-price", 0, "minimum asking price in pounds")
	searchCmd.Flags().IntVar(&searchMaxPrice, "max-price", 0, "maximum asking price in pounds (0 = unbounded)")
	searchCmd.Flags().StringSliceVar(&searchSources, "sources", nil, "source IDs to query (default all registered)")
	searchCmd.Flags().BoolVar(&searchExcludeLand, "exclude-land", false, "drop land and plot listings")
	searchCmd.Flags().BoolVar(&searchExcludeAuctions, "exclude-auctions", false, "drop auction listings")
	searchCmd.Flags().BoolVar(&searchAllowLeasehold, "allow-leasehold", false, "keep leasehold and shared-ownership listings")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "rescore top candidates with the semantic analyzer")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = all)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the result document as JSON")
	searchCmd.Flags().BoolVar(&searchCSV, "csv", false, "write the result document as CSV")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "write the result document to this path")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchPipeline == nil {
		return errors.New("search pipeline not configured")
	}

	locations := args
	if len(locations) == 0 {
		locations = promptLocations(cmd)
	}
	if len(locations) == 0 {
		return errors.New("at least one location is required")
	}

	mode := domain.ScoringHeuristic
	if searchSemantic {
		mode = domain.ScoringSemantic
	}

	sources := searchSources
	if len(sources) == 0 && sourceRegistry != nil {
		sources = sourceRegistry.IDs()
	}

	req := domain.SearchRequest{
		Locations:       locations,
		Radius:          searchRadius,
		MinPrice:        searchMinPrice,
		MaxPrice:        searchMaxPrice,
		Sources:         sources,
		AllowLeasehold:  searchAllowLeasehold,
		ExcludeLand:     searchExcludeLand,
		ExcludeAuctions: searchExcludeAuctions,
		Mode:            mode,
	}

	ctx := context.Background()
	result, err := searchPipeline.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	doc := searchPipeline.Document(ctx, req, result)
	if searchLimit > 0 && len(doc.Properties) > searchLimit {
		doc.Properties = doc.Properties[:searchLimit]
		doc.TotalCount = len(doc.Properties)
	}

	reportFailures(cmd, result.Outcomes)

	switch {
	case searchCSV:
		return exportDocument(cmd, csvfile.New(searchOutput), doc)
	case searchOutput != "":
		return exportDocument(cmd, jsonfile.New(searchOutput), doc)
	case searchJSON:
		return outputDocumentJSON(cmd, doc)
	default:
		cmd.Print(renderDocument(doc, result.FinalRadius))
		return nil
	}
}

// promptLocations asks for locations interactively. A non-terminal
// stdin (pipe, CI) returns nil so the caller can fail with a clear
// validation error instead of hanging on a read.
func promptLocations(cmd *cobra.Command) []string {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	cmd.Print("Enter location(s), comma separated (or 'england' for nationwide): ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil
	}

	var locations []string
	for _, part := range strings.Split(line, ",") {
		if part = strings.TrimSpace(part); part != "" {
			locations = append(locations, part)
		}
	}
	return locations
}

// reportFailures prints a stderr summary of failed fetch units. Source
// failures never fail the command; the result document was still
// produced from whatever completed.
func reportFailures(cmd *cobra.Command, outcomes []domain.SourceRunOutcome) {
	failed := 0
	for i := range outcomes {
		if outcomes[i].Failed() {
			failed++
		}
	}
	if failed > 0 {
		cmd.PrintErrf("Warning: %d of %d source fetches failed; results may be partial.\n",
			failed, len(outcomes))
	}
}

func exportDocument(cmd *cobra.Command, exporter driven.ResultExporter, doc *domain.ResultDocument) error {
	path, err := exporter.Export(context.Background(), doc)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	cmd.Printf("Wrote %d properties to %s\n", doc.TotalCount, path)
	return nil
}

func outputDocumentJSON(cmd *cobra.Command, doc *domain.ResultDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result document: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
