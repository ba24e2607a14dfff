package operations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tweetpulse/internal/aggregate"
	"tweetpulse/internal/charts"
	"tweetpulse/internal/config"
	apperrors "tweetpulse/internal/errors"
	"tweetpulse/internal/exporter"
	"tweetpulse/internal/infrastructure"
	"tweetpulse/internal/loader"
	"tweetpulse/internal/market"
	"tweetpulse/internal/sentiment"
	"tweetpulse/internal/textnorm"
	"tweetpulse/pkg/contracts/domain"
)

// MarketRequest selects the price series overlaid on the report
type MarketRequest struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// StageDependencies holds everything the pipeline steps need
type StageDependencies struct {
	Paths      *config.Paths
	Loader     *loader.Loader
	Classifier *sentiment.Classifier
	Reports    *exporter.ReportExporter
	Workbook   *exporter.WorkbookWriter
	Charts     *charts.Renderer
	Prices     market.Provider
	Market     MarketRequest
	SkipPrices bool
	RunID      string
	Metrics    *infrastructure.PipelineMetrics
	Logger     *slog.Logger
}

// NewPipelineRegistry registers the analysis steps in execution order
func NewPipelineRegistry(deps StageDependencies) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := NewRegistry()
	r.MustRegister(
		NewLoadStage(deps),
		NewNormalizeStage(deps),
		NewClassifyStage(deps),
		NewAggregateStage(deps),
		NewExportStage(deps),
		NewChartsStage(deps),
		NewPricesStage(deps),
		NewWorkbookStage(deps),
	)
	return r
}

// LoadStage reads the posts dataset
type LoadStage struct {
	BaseStage
	deps StageDependencies
}

// NewLoadStage creates a new load stage
func NewLoadStage(deps StageDependencies) *LoadStage {
	return &LoadStage{BaseStage: NewBaseStage(StageIDLoad, StageNameLoad), deps: deps}
}

// Validate requires an input path
func (s *LoadStage) Validate(state *OperationState) error {
	if state.InputPath == "" {
		return apperrors.NewAppValidationError("input path is required", nil)
	}
	return nil
}

// Execute loads the posts into state
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	posts, err := s.deps.Loader.Load(ctx, state.InputPath)
	if err != nil {
		return err
	}
	state.Posts = posts
	state.GetStage(s.ID()).SetMetadata("posts", len(posts))
	s.deps.Metrics.RecordPostsLoaded(ctx, len(posts))
	return nil
}

// NormalizeStage cleans post text before scoring
type NormalizeStage struct {
	BaseStage
	deps StageDependencies
}

// NewNormalizeStage creates a new normalize stage
func NewNormalizeStage(deps StageDependencies) *NormalizeStage {
	return &NormalizeStage{BaseStage: NewBaseStage(StageIDNormalize, StageNameNormalize), deps: deps}
}

// Validate requires loaded posts
func (s *NormalizeStage) Validate(state *OperationState) error {
	return requirePosts(state)
}

// Execute replaces every post's text with its normalized form
func (s *NormalizeStage) Execute(ctx context.Context, state *OperationState) error {
	state.Posts = textnorm.NormalizePosts(state.Posts)
	return nil
}

// ClassifyStage scores and labels every post
type ClassifyStage struct {
	BaseStage
	deps StageDependencies
}

// NewClassifyStage creates a new classify stage
func NewClassifyStage(deps StageDependencies) *ClassifyStage {
	return &ClassifyStage{BaseStage: NewBaseStage(StageIDClassify, StageNameClassify), deps: deps}
}

// Validate requires loaded posts
func (s *ClassifyStage) Validate(state *OperationState) error {
	return requirePosts(state)
}

// Execute classifies the posts and tallies the labels
func (s *ClassifyStage) Execute(ctx context.Context, state *OperationState) error {
	scored, err := s.deps.Classifier.ClassifyPosts(ctx, state.Posts)
	if err != nil {
		return err
	}
	state.Scored = scored
	state.Stats = sentiment.Tally(scored)

	s.deps.Metrics.RecordPostsScored(ctx, domain.SentimentPositive.String(), state.Stats.Positive)
	s.deps.Metrics.RecordPostsScored(ctx, domain.SentimentNegative.String(), state.Stats.Negative)
	state.GetStage(s.ID()).SetMetadata("stats", state.Stats)

	s.deps.Logger.InfoContext(ctx, "Posts classified", slog.Any("stats", state.Stats))
	return nil
}

// AggregateStage computes the report views
type AggregateStage struct {
	BaseStage
	deps StageDependencies
}

// NewAggregateStage creates a new aggregate stage
func NewAggregateStage(deps StageDependencies) *AggregateStage {
	return &AggregateStage{BaseStage: NewBaseStage(StageIDAggregate, StageNameAggregate), deps: deps}
}

// Validate requires classified posts
func (s *AggregateStage) Validate(state *OperationState) error {
	return requireScored(state)
}

// Execute builds the sentiment report
func (s *AggregateStage) Execute(ctx context.Context, state *OperationState) error {
	state.Report = aggregate.Build(state.Scored)
	state.GetStage(s.ID()).SetMetadata("days", len(state.Report.Daily))
	state.GetStage(s.ID()).SetMetadata("years", len(state.Report.Yearly))
	return nil
}

// ExportStage writes the report views and scored posts as CSV
type ExportStage struct {
	BaseStage
	deps StageDependencies
}

// NewExportStage creates a new export stage
func NewExportStage(deps StageDependencies) *ExportStage {
	return &ExportStage{BaseStage: NewBaseStage(StageIDExport, StageNameExport), deps: deps}
}

// Validate requires classified posts
func (s *ExportStage) Validate(state *OperationState) error {
	return requireScored(state)
}

// Execute writes every CSV table
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	files, err := s.deps.Reports.ExportReport(state.Report)
	for _, f := range files {
		recordArtifact(ctx, state, s.deps.Metrics, ArtifactCSV, f)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to export report tables", err)
	}

	path, err := s.deps.Reports.ExportScoredPosts(state.Scored)
	if err != nil {
		return apperrors.NewStorageError("failed to export scored posts", err)
	}
	recordArtifact(ctx, state, s.deps.Metrics, ArtifactCSV, path)
	return nil
}

// ChartsStage renders the sentiment charts
type ChartsStage struct {
	BaseStage
	deps StageDependencies
}

// NewChartsStage creates a new charts stage
func NewChartsStage(deps StageDependencies) *ChartsStage {
	return &ChartsStage{BaseStage: NewBaseStage(StageIDCharts, StageNameCharts), deps: deps}
}

// Validate requires classified posts
func (s *ChartsStage) Validate(state *OperationState) error {
	return requireScored(state)
}

// Execute renders every sentiment chart; charts without enough data are skipped
func (s *ChartsStage) Execute(ctx context.Context, state *OperationState) error {
	r := s.deps.Charts
	report := state.Report

	jobs := []chartJob{
		{charts.DailySentimentFile, func(w io.Writer) error { return r.DailySentiment(w, report.Daily) }},
	}
	for _, m := range domain.Metrics {
		metric := m
		jobs = append(jobs, chartJob{charts.EngagementFile(metric), func(w io.Writer) error {
			return r.Engagement(w, metric, report.Engagement[metric])
		}})
	}
	jobs = append(jobs, chartJob{charts.YearlyCountsFile, func(w io.Writer) error { return r.YearlyCounts(w, report.Yearly) }})

	rendered := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := renderChart(ctx, state, s.deps, job.file, job.render)
		if err != nil {
			return err
		}
		if ok {
			rendered++
		}
	}
	state.GetStage(s.ID()).SetMetadata("charts", rendered)
	return nil
}

type chartJob struct {
	file   string
	render charts.RenderFunc
}

// PricesStage fetches the market series, exports it and renders its chart.
// A failed fetch skips this step only.
type PricesStage struct {
	BaseStage
	deps StageDependencies
}

// NewPricesStage creates a new prices stage
func NewPricesStage(deps StageDependencies) *PricesStage {
	return &PricesStage{BaseStage: NewBaseStage(StageIDPrices, StageNamePrices), deps: deps}
}

// Validate requires a provider and a symbol unless prices are disabled
func (s *PricesStage) Validate(state *OperationState) error {
	if s.deps.SkipPrices {
		return nil
	}
	if s.deps.Prices == nil {
		return apperrors.NewConfigError("market provider is not configured", nil)
	}
	if s.deps.Market.Symbol == "" {
		return apperrors.NewConfigError("market symbol is required", nil)
	}
	return nil
}

// Execute fetches and stores the price series
func (s *PricesStage) Execute(ctx context.Context, state *OperationState) error {
	if s.deps.SkipPrices {
		return SkipStep("price fetch disabled", nil)
	}

	req := s.deps.Market
	series, err := s.deps.Prices.DailyClose(ctx, req.Symbol, req.Start, req.End)
	if err != nil {
		// only cancellation of the run halts it; a step deadline skips
		if errors.Is(ctx.Err(), context.Canceled) {
			return err
		}
		return s.skipFailedFetch(ctx, state, err)
	}
	state.Prices = &series
	state.GetStage(s.ID()).SetMetadata("points", series.Len())

	path, err := s.deps.Reports.ExportPrices(series, "")
	if err != nil {
		return apperrors.NewStorageError("failed to export price series", err)
	}
	recordArtifact(ctx, state, s.deps.Metrics, ArtifactCSV, path)

	_, err = renderChart(ctx, state, s.deps, charts.PriceFile(series.Symbol), func(w io.Writer) error {
		return s.deps.Charts.Price(w, series)
	})
	return err
}

// skipFailedFetch records why the fetch failed and skips the step
func (s *PricesStage) skipFailedFetch(ctx context.Context, state *OperationState, err error) error {
	errType := string(apperrors.TypeOf(err))
	retryable := apperrors.IsRetryable(err)
	if errors.Is(err, context.DeadlineExceeded) {
		errType, retryable = "TIMEOUT", true
	}

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("error_type", errType)
	stepState.SetMetadata("retryable", retryable)

	s.deps.Logger.WarnContext(ctx, "Price fetch failed, continuing without prices",
		slog.String("symbol", s.deps.Market.Symbol),
		slog.String("error_type", errType),
		slog.Bool("retryable", retryable),
		slog.String("error", err.Error()))

	reason := "price series unavailable"
	if retryable {
		reason += " (transient)"
	}
	return SkipStep(reason, err)
}

// WorkbookStage writes the XLSX report
type WorkbookStage struct {
	BaseStage
	deps StageDependencies
}

// NewWorkbookStage creates a new workbook stage
func NewWorkbookStage(deps StageDependencies) *WorkbookStage {
	return &WorkbookStage{BaseStage: NewBaseStage(StageIDWorkbook, StageNameWorkbook), deps: deps}
}

// Validate requires classified posts
func (s *WorkbookStage) Validate(state *OperationState) error {
	return requireScored(state)
}

// Execute builds the workbook from every view in state
func (s *WorkbookStage) Execute(ctx context.Context, state *OperationState) error {
	path := s.deps.Paths.WorkbookFile
	err := s.deps.Workbook.Write(path, exporter.WorkbookInput{
		Summary: s.summary(state),
		Report:  state.Report,
		Prices:  state.Prices,
		Posts:   state.Scored,
	})
	if err != nil {
		return apperrors.NewStorageError("failed to write workbook", err)
	}
	recordArtifact(ctx, state, s.deps.Metrics, ArtifactXLSX, path)
	return nil
}

func (s *WorkbookStage) summary(state *OperationState) []exporter.SummaryItem {
	items := []exporter.SummaryItem{
		{Label: "Application", Value: config.AppName + " " + config.AppVersion},
		{Label: "Run ID", Value: s.deps.RunID},
		{Label: "Generated", Value: time.Now().UTC().Format(time.RFC3339)},
		{Label: "Input", Value: state.InputPath},
		{Label: "Posts", Value: state.Stats.Total},
		{Label: "Positive", Value: state.Stats.Positive},
		{Label: "Negative", Value: state.Stats.Negative},
		{Label: "Neutral (counted positive)", Value: state.Stats.Neutral},
		{Label: "Days", Value: len(state.Report.Daily)},
	}
	if state.Prices != nil {
		items = append(items,
			exporter.SummaryItem{Label: "Symbol", Value: state.Prices.Symbol},
			exporter.SummaryItem{Label: "Price points", Value: state.Prices.Len()},
		)
	}
	return items
}

// renderChart writes one chart into the charts directory. It reports false
// without error when the chart has too little data.
func renderChart(ctx context.Context, state *OperationState, deps StageDependencies, file string, render charts.RenderFunc) (bool, error) {
	path := deps.Paths.GetChartPath(file)
	err := charts.WriteFile(path, render)
	if errors.Is(err, charts.ErrInsufficientData) {
		deps.Logger.WarnContext(ctx, "Chart skipped, not enough data", slog.String("chart", file))
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewRenderError(fmt.Sprintf("failed to render %s", file), err)
	}
	recordArtifact(ctx, state, deps.Metrics, ArtifactPNG, path)
	return true, nil
}

func recordArtifact(ctx context.Context, state *OperationState, metrics *infrastructure.PipelineMetrics, kind, path string) {
	state.AddArtifact(kind, path)
	metrics.RecordArtifact(ctx, kind)
}

func requirePosts(state *OperationState) error {
	if state.Posts == nil {
		return apperrors.NewAppValidationError("no posts loaded", nil)
	}
	return nil
}

func requireScored(state *OperationState) error {
	if state.Scored == nil {
		return apperrors.NewAppValidationError("no classified posts", nil)
	}
	return nil
}
