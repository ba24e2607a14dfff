package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tweetpulse/internal/charts"
	"tweetpulse/internal/config"
	"tweetpulse/internal/exporter"
	"tweetpulse/internal/infrastructure"
	"tweetpulse/internal/loader"
	"tweetpulse/internal/market"
	"tweetpulse/internal/operations"
	"tweetpulse/internal/sentiment"
	"tweetpulse/internal/validation"
	"tweetpulse/pkg/contracts/domain"
)

// Options carries command-line overrides. Zero values keep the configured setting.
type Options struct {
	// Config replaces configuration loading when set
	Config     *config.Config
	ConfigFile string

	InputPath  string
	OutputDir  string
	Symbol     string
	StartDate  string
	EndDate    string
	Workers    int
	SkipPrices bool

	// Logger replaces the global JSON logger when set
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Application holds the wired components of one pipeline run
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Metrics   *infrastructure.PipelineMetrics
	Manager   *operations.Manager
	Prices    market.Provider
	Reports   *exporter.ReportExporter
	RunID     string

	market     operations.MarketRequest
	ownsLogger bool
}

// NewApplication loads configuration and builds every component
func NewApplication(opts Options) (*Application, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	paths, err := resolvePaths(cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	app := &Application{
		Config: cfg,
		Paths:  paths,
		Logger: opts.Logger,
		RunID:  uuid.New().String(),
	}

	if app.Logger == nil {
		if cfg.Logging.FilePath == "" {
			cfg.Logging.FilePath = infrastructure.DefaultLoggingConfig(paths).FilePath
		}
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.Logger = logger
		app.ownsLogger = true
	}

	app.Logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("run_id", app.RunID))
	paths.LogPathResolution()

	app.Telemetry, err = infrastructure.InitializeTelemetry(infrastructure.OptionsFromConfig(cfg.Telemetry, paths), app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	app.Metrics, err = infrastructure.NewPipelineMetrics(app.Telemetry.Meter)
	if err != nil {
		_ = app.Telemetry.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	start, end, err := cfg.Market.Range()
	if err != nil {
		return nil, err
	}
	app.market = operations.MarketRequest{Symbol: cfg.Market.Symbol, Start: start, End: end}

	providerOpts := []market.Option{market.WithMetrics(app.Metrics)}
	if opts.HTTPClient != nil {
		providerOpts = append(providerOpts, market.WithHTTPClient(opts.HTTPClient))
	}
	app.Prices = market.NewYahooProvider(cfg.Market, infrastructure.WithComponent(app.Logger, "market"), providerOpts...)
	app.Reports = exporter.NewReportExporter(paths, infrastructure.WithComponent(app.Logger, "exporter"))

	app.Manager = app.buildManager()
	return app, nil
}

func loadConfig(opts Options) (*config.Config, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if opts.ConfigFile != "" {
			cfg, err = config.LoadFrom(opts.ConfigFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	if opts.Symbol != "" {
		cfg.Market.Symbol = opts.Symbol
	}
	if opts.StartDate != "" {
		cfg.Market.StartDate = opts.StartDate
	}
	if opts.EndDate != "" {
		cfg.Market.EndDate = opts.EndDate
	}
	if opts.Workers > 0 {
		cfg.Pipeline.Workers = opts.Workers
	}
	if opts.SkipPrices {
		cfg.Pipeline.SkipPrices = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolvePaths(cfg *config.Config, opts Options) (*config.Paths, error) {
	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if opts.InputPath != "" {
		abs, err := filepath.Abs(opts.InputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve input %s: %w", opts.InputPath, err)
		}
		paths.PostsFile = abs
	}
	if opts.OutputDir != "" {
		abs, err := filepath.Abs(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output dir %s: %w", opts.OutputDir, err)
		}
		if err := validation.NewFileValidator(nil).ValidateOutputDirectory(abs); err != nil {
			return nil, fmt.Errorf("invalid output dir: %w", err)
		}
		paths = paths.WithReportsDir(abs)
	}
	return paths, nil
}

func (a *Application) buildManager() *operations.Manager {
	logger := infrastructure.WithComponent(a.Logger, "pipeline")
	deps := operations.StageDependencies{
		Paths:      a.Paths,
		Loader:     loader.New(infrastructure.WithComponent(a.Logger, "loader")),
		Classifier: sentiment.NewClassifier(sentiment.NewVaderScorer(), a.Config.Pipeline.Workers, logger),
		Reports:    a.Reports,
		Workbook:   exporter.NewWorkbookWriter(infrastructure.WithComponent(a.Logger, "workbook")),
		Charts:     charts.NewRenderer(a.Config.Pipeline.ChartWidth, a.Config.Pipeline.ChartHeight),
		Prices:     a.Prices,
		Market:     a.market,
		SkipPrices: a.Config.Pipeline.SkipPrices,
		RunID:      a.RunID,
		Metrics:    a.Metrics,
		Logger:     logger,
	}

	registry := operations.NewPipelineRegistry(deps)
	tracer := operations.NewOperationTracer(a.Telemetry, a.Metrics)
	return operations.NewManager(registry, operations.NewConfig(), tracer, logger)
}

// Run executes the pipeline over the configured input
func (a *Application) Run(ctx context.Context) (*operations.OperationResponse, error) {
	ctx = infrastructure.WithTraceID(ctx, a.RunID)

	state := operations.NewOperationState(a.RunID, a.Paths.PostsFile)
	resp, err := a.Manager.Execute(ctx, state)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Pipeline failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", resp.Duration))
		return resp, err
	}

	a.Logger.InfoContext(ctx, "Pipeline completed",
		slog.Any("stats", state.Stats),
		slog.Int("artifacts", len(resp.Artifacts)),
		slog.String("reports_dir", a.Paths.ReportsDir),
		slog.Duration("duration", resp.Duration))
	return resp, nil
}

// FetchPrices downloads the configured price series and writes it as CSV.
// An empty out uses the default prices file name in the reports directory.
func (a *Application) FetchPrices(ctx context.Context, out string) (domain.PriceSeries, string, error) {
	ctx = infrastructure.WithTraceID(ctx, a.RunID)
	ctx, span := a.Telemetry.StartSpan(ctx, "prices.fetch")
	defer span.End()

	series, err := a.Prices.DailyClose(ctx, a.market.Symbol, a.market.Start, a.market.End)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.PriceSeries{}, "", err
	}

	path, err := a.Reports.ExportPrices(series, out)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return series, "", err
	}
	a.Metrics.RecordArtifact(ctx, operations.ArtifactCSV)
	return series, path, nil
}

// Close writes the metrics file, flushes telemetry and closes the log file
func (a *Application) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var firstErr error
	if a.Telemetry != nil {
		a.Metrics.RecordRuntime(ctx)
		if err := a.Telemetry.WriteMetrics(a.Paths.MetricsFile); err != nil {
			firstErr = err
		}
		if err := a.Telemetry.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete", slog.String("run_id", a.RunID))

	if a.ownsLogger {
		if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
