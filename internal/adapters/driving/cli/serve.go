package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/propscout/propscout-cli/internal/core/domain"
)

var (
	serveInterval time.Duration
	serveRadius   float64
	serveMaxPrice int
	serveSources  []string
)

var serveCmd = &cobra.Command{
	Use:   "serve [location...]",
	Short: "Run the scheduled refresh daemon",
	Long: `Re-runs the search on an interval and keeps the exported result
document fresh. Runs until interrupted; each refresh is recorded in the
task history.`,
	Args: cobra.ArbitraryArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveInterval, "interval", time.Hour, "time between refresh runs")
	serveCmd.Flags().Float64VarP(&serveRadius, "radius", "r", 5, "search radius in miles")
	serveCmd.Flags().IntVar(&serveMaxPrice, "max-price", 0, "maximum asking price in pounds (0 = unbounded)")
	serveCmd.Flags().StringSliceVar(&serveSources, "sources", nil, "source IDs to query (default all registered)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if schedulerFactory == nil {
		return errors.New("scheduler not configured")
	}
	if len(args) == 0 {
		return errors.New("at least one location is required")
	}
	if serveInterval < time.Minute {
		return fmt.Errorf("interval %s is below the one minute floor", serveInterval)
	}

	sources := serveSources
	if len(sources) == 0 && sourceRegistry != nil {
		sources = sourceRegistry.IDs()
	}

	req := domain.SearchRequest{
		Locations: args,
		Radius:    serveRadius,
		MaxPrice:  serveMaxPrice,
		Sources:   sources,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	sched := schedulerFactory(req, serveInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Refreshing %v every %s. Press Ctrl+C to stop.\n", args, serveInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sched.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		cmd.Println("\nShutting down...")
		if err := sched.Stop(); err != nil {
			return fmt.Errorf("scheduler shutdown: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("scheduler stopped: %w", err)
		}
		return nil
	}
}
