package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/db"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/fetch"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/generation"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/observability"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for running generation jobs.

Jobs are stored when DATABASE_URL or --db-url is set; otherwise the job endpoints answer 503.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")

	serveCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().StringVar(&genModel, "model", "", "Model for the standard tier, used by every unit without a tier override")
	serveCmd.Flags().StringVar(&genLogMode, "log-mode", "", "Log mode: dev or prod")
	serveCmd.Flags().IntVar(&genRPM, "rpm", 0, "Maximum model requests per minute, shared by all jobs")
	serveCmd.Flags().BoolVar(&genUseBrowser, "use-browser", false, "Use headless browser for SPA prior sites (requires Chrome)")
	serveCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	serveCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	logger, err := observability.NewLogger(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gemini, err := llm.NewTransport(ctx, cfg.ModelConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model transport: %w", err)
	}
	defer func() { _ = gemini.Close() }()

	var store server.JobStore
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		store = database
	} else {
		logger.Warn("no database configured, jobs will not be stored")
	}

	metrics := observability.NewMetricsObserver()
	pricing := cfg.PipelinePricing()
	useBrowser := cfg.UseBrowser

	srv, err := server.New(server.Config{
		Port:      servePort,
		Transport: llm.NewRateLimitedTransport(gemini, cfg.RequestsPerMinute),
		Generation: generation.Options{
			Overrides: cfg.GenerationOverrides(),
			Observer:  generation.Observers(observability.NewLogObserver(logger), metrics),
		},
		Pricing: &pricing,
		Store:   store,
		PriorSite: func(ctx context.Context, siteURL string) (string, error) {
			return fetch.PriorSiteExcerpt(ctx, siteURL, &fetch.ExcerptOptions{
				Fetch:      &fetch.Options{Timeout: fetch.DefaultTimeout, PublicOnly: true},
				UseBrowser: useBrowser,
				Log:        logger,
			})
		},
		Metrics: metrics,
		Log:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("serving generation API", zap.Int("port", servePort), zap.Bool("persistence", store != nil))
	return srv.Start()
}
