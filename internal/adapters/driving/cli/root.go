// Package cli implements the propscout command-line interface using
// cobra. Commands are thin: they parse flags into a domain request,
// call the driving ports, and render the result document. All service
// wiring happens in main before Execute is called.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/core/ports/driving"
	"github.com/propscout/propscout-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by main. Commands check for nil and fail with a
// configuration error rather than panicking.
var (
	searchPipeline   driving.Pipeline
	sourceRegistry   driven.AdapterRegistry
	schedulerFactory func(req domain.SearchRequest, interval time.Duration) driving.Scheduler
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "propscout",
	Short: "Find below-market-value property listings across UK portals",
	Long: `Propscout aggregates for-sale listings from UK property portals and
auction houses, deduplicates them across sources, and scores each one
for below-market-value signals like repossessions, auctions and
renovation projects.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose logging to stderr")
}

// Services holds the injected dependencies for the CLI commands.
type Services struct {
	// Pipeline runs searches.
	Pipeline driving.Pipeline

	// Registry resolves and lists source adapters.
	Registry driven.AdapterRegistry

	// NewScheduler builds the refresh scheduler for the serve command.
	NewScheduler func(req domain.SearchRequest, interval time.Duration) driving.Scheduler
}

// SetServices injects the services the commands depend on.
// Call this once from main before Execute.
func SetServices(s Services) {
	searchPipeline = s.Pipeline
	sourceRegistry = s.Registry
	schedulerFactory = s.NewScheduler
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
