package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/config"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/db"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/fetch"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/generation"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/observability"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the full site content for one business",
	Long: `Generates the site foundation first, then every applicable section concurrently: about -> values -> features -> services -> team -> testimonials -> contact.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runGenerate,
}

var (
	genConfigPath  string
	genRequestPath string
	genPriorURL    string
	genOutput      string
	genAPIKey      string
	genModel       string
	genLogMode     string
	genRPM         int
	genUseBrowser  bool
	genVerbose     bool
	genDatabaseURL string
	genTrace       bool
	genMetricsFile string
)

func init() {
	// Config file flag (processed first)
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	generateCmd.Flags().StringVarP(&genRequestPath, "request", "r", "", "Path to GenerationRequest JSON file, or - for stdin (required)")
	generateCmd.Flags().StringVar(&genPriorURL, "url", "", "Existing site URL to use as a prior-site excerpt")
	generateCmd.Flags().StringVarP(&genOutput, "out", "o", "", "Write the result JSON to this file instead of stdout")
	generateCmd.Flags().StringVar(&genModel, "model", "", "Model for the standard tier, used by every unit without a tier override")
	generateCmd.Flags().StringVar(&genLogMode, "log-mode", "", "Log mode: dev or prod")
	generateCmd.Flags().IntVar(&genRPM, "rpm", 0, "Maximum model requests per minute")
	generateCmd.Flags().BoolVar(&genUseBrowser, "use-browser", false, "Use headless browser for SPA prior sites (requires Chrome)")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print progress and a result summary to stderr")
	generateCmd.Flags().BoolVar(&genTrace, "trace", false, "Print OpenTelemetry spans to stderr")
	generateCmd.Flags().StringVar(&genMetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for job persistence
	generateCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	if err := generateCmd.MarkFlagRequired("request"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
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

	req, err := loadRequest(genRequestPath)
	if err != nil {
		return err
	}
	if genPriorURL != "" {
		attachPriorSite(ctx, req, genPriorURL, cfg.UseBrowser, logger)
	}

	if genTrace {
		shutdown, err := observability.InitTracing(os.Stderr, "sitegen")
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	gemini, err := llm.NewTransport(ctx, cfg.ModelConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model transport: %w", err)
	}
	defer func() { _ = gemini.Close() }()

	printer := observability.NewPrinter(os.Stderr)
	metrics := observability.NewMetricsObserver()
	pricing := cfg.PipelinePricing()

	opts := pipeline.Options{
		Transport: llm.NewRateLimitedTransport(gemini, cfg.RequestsPerMinute),
		Generation: generation.Options{
			Overrides: cfg.GenerationOverrides(),
			Observer:  generation.Observers(observability.NewLogObserver(logger), metrics),
		},
		Pricing: &pricing,
	}
	if cfg.Verbose {
		opts.OnProgress = printer.PrintProgress
	}

	result, runErr := pipeline.Run(ctx, req, opts)

	if cfg.DatabaseURL != "" {
		if err := persist(ctx, cfg.DatabaseURL, req, result, runErr); err != nil {
			logger.Error("failed to persist job", zap.Error(err))
		}
	}
	if genMetricsFile != "" {
		if err := metrics.WriteTextfile(genMetricsFile); err != nil {
			logger.Error("failed to write metrics", zap.String("path", genMetricsFile), zap.Error(err))
		}
	}

	if runErr != nil {
		if fatal, ok := pipeline.IsFatal(runErr); ok {
			printer.PrintFatal(fatal)
		}
		return runErr
	}

	if cfg.Verbose {
		printer.PrintResult(result)
	}
	return writeJSON(os.Stdout, genOutput, result)
}

// resolveConfig loads the config file, applies explicitly set flags and fills
// the remaining defaults. generate and serve share the flag variables.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if genConfigPath != "" {
		loadedCfg, err := config.LoadConfig(genConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = genAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = genModel
	}
	if cmd.Flags().Changed("log-mode") {
		cfg.LogMode = genLogMode
	}
	if cmd.Flags().Changed("rpm") {
		cfg.RequestsPerMinute = genRPM
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = genUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = genDatabaseURL
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	// Step 3: Apply defaults for unset values
	return cfg.MergeWithDefaults(config.Config{DatabaseURL: os.Getenv("DATABASE_URL")}), nil
}

// attachPriorSite fetches the business's existing site into the request.
// A failed fetch is logged and generation continues without an excerpt.
func attachPriorSite(ctx context.Context, req *types.GenerationRequest, siteURL string, useBrowser bool, log *zap.Logger) {
	excerpt, err := fetch.PriorSiteExcerpt(ctx, siteURL, &fetch.ExcerptOptions{
		UseBrowser: useBrowser,
		Log:        log,
	})
	if err != nil {
		log.Warn("prior site unavailable", zap.String("url", siteURL), zap.Error(err))
		return
	}
	req.PriorSiteURL = siteURL
	req.PriorSiteExcerpt = excerpt
}

// persist stores the job outcome. Request errors are not stored since no job ran.
func persist(ctx context.Context, databaseURL string, req *types.GenerationRequest, result *types.GenerationResult, runErr error) error {
	fatal, isFatal := pipeline.IsFatal(runErr)
	if runErr != nil && !isFatal {
		return nil
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}
	if isFatal {
		return database.SaveFailure(ctx, req, fatal, time.Now().UTC())
	}
	return database.SaveResult(ctx, req, result)
}
