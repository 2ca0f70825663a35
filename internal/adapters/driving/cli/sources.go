package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered listing sources",
	Long: `Lists every registered source adapter with its capabilities.
Radius-scoped sources participate in smart radius expansion; auction
sources are keyword searched exactly once per run.`,
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if sourceRegistry == nil {
		return errors.New("source registry not configured")
	}

	ids := sourceRegistry.IDs()
	if len(ids) == 0 {
		cmd.Println("No sources registered.")
		return nil
	}

	cmd.Printf("Registered sources (%d):\n\n", len(ids))
	for _, id := range ids {
		adapter, err := sourceRegistry.Get(id)
		if err != nil {
			// Registry changed between IDs and Get; skip rather than fail.
			continue
		}

		caps := adapter.Capabilities()
		var traits []string
		if caps.Auction {
			traits = append(traits, "auction")
		}
		if caps.RadiusScoped {
			traits = append(traits, "radius-scoped")
		}
		if caps.SupportsPriceFilter {
			traits = append(traits, "price-filter")
		}
		if len(traits) == 0 {
			traits = append(traits, "keyword")
		}

		cmd.Printf("  %-14s %s\n", id, strings.Join(traits, ", "))
	}

	return nil
}
