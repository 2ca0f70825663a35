// propscout finds below-market-value property listings across UK
// portals and auction houses.
//
// All service wiring happens here: source adapters, storage, the
// scoring pipeline and the CLI are composed once and handed to the
// command layer.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/propscout/propscout-cli/internal/adapters/driven/areastats/web"
	"github.com/propscout/propscout-cli/internal/adapters/driven/config/file"
	"github.com/propscout/propscout-cli/internal/adapters/driven/export/jsonfile"
	"github.com/propscout/propscout-cli/internal/adapters/driven/semantic/ollama"
	"github.com/propscout/propscout-cli/internal/adapters/driven/semantic/rules"
	"github.com/propscout/propscout-cli/internal/adapters/driven/storage/sqlite"
	"github.com/propscout/propscout-cli/internal/adapters/driving/cli"
	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/core/ports/driving"
	"github.com/propscout/propscout-cli/internal/core/services"
	"github.com/propscout/propscout-cli/internal/logger"
	"github.com/propscout/propscout-cli/internal/sources"
	"github.com/propscout/propscout-cli/internal/sources/auctionhouse"
	"github.com/propscout/propscout-cli/internal/sources/nestoria"
	"github.com/propscout/propscout-cli/internal/sources/onthemarket"
	"github.com/propscout/propscout-cli/internal/sources/pugh"
	"github.com/propscout/propscout-cli/internal/sources/rightmove"
	"github.com/propscout/propscout-cli/internal/sources/zoopla"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real config lives in ~/.propscout/config.toml.
	_ = godotenv.Load()

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	client := sources.NewClient()
	registry := buildRegistry(client)

	analyzer := buildAnalyzer(cfg)
	defer analyzer.Close()

	canon := services.NewCanonicaliser()
	orchestrator := services.NewOrchestrator(
		registry,
		canon,
		cfg.GetInt("pipeline.workers"),
		time.Duration(cfg.GetInt("pipeline.timeout_seconds"))*time.Second,
	)
	scorer := services.NewScorer(analyzer, cfg.GetInt("semantic.top_n"))
	aggregator := services.NewAggregator(registry)
	enricher := services.NewEnricher(
		web.New(web.Config{Client: client}),
		store.AreaStatsCache(),
	)
	pipeline := services.NewPipeline(registry, orchestrator, scorer, aggregator, enricher, store.RunStore())

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Pipeline: pipeline,
		Registry: registry,
		NewScheduler: func(req domain.SearchRequest, interval time.Duration) driving.Scheduler {
			schedCfg := domain.DefaultSchedulerConfig()
			schedCfg.TaskConfigs[domain.TaskIDPipelineRefresh] = domain.TaskConfig{
				Enabled:  true,
				Interval: interval,
			}
			exporter := jsonfile.New(cfg.GetString("export.path"))
			return services.NewScheduler(schedCfg, store.SchedulerStore(), pipeline, exporter, req)
		},
	})

	return cli.Execute()
}

// buildRegistry registers every supported source adapter over the
// shared throttled client.
func buildRegistry(client *sources.Client) driven.AdapterRegistry {
	registry := services.NewAdapterRegistry()
	registry.Register(rightmove.New(rightmove.Config{Client: client}))
	registry.Register(zoopla.New(zoopla.Config{Client: client}))
	registry.Register(onthemarket.New(onthemarket.Config{Client: client}))
	registry.Register(nestoria.New(nestoria.Config{Client: client}))
	registry.Register(auctionhouse.New(auctionhouse.Config{Client: client}))
	registry.Register(pugh.New(pugh.Config{Client: client}))
	return registry
}

// buildAnalyzer prefers a local Ollama model and falls back to the
// deterministic rule-based analyzer when it is unreachable.
func buildAnalyzer(cfg driven.ConfigStore) driven.SemanticAnalyzer {
	baseURL := cfg.GetString("semantic.ollama_url")
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}

	analyzer := ollama.New(ollama.Config{
		BaseURL: baseURL,
		Model:   cfg.GetString("semantic.model"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := analyzer.Ping(ctx); err != nil {
		logger.Debug("Ollama unavailable (%v), using rule-based analyzer", err)
		return rules.New()
	}
	return analyzer
}
