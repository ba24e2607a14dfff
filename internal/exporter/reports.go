package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"tweetpulse/internal/config"
	"tweetpulse/pkg/contracts/domain"
)

// Report table file names, relative to the reports directory
const (
	DailySentimentCSV = "daily_sentiment.csv"
	EngagementCSV     = "engagement_by_sentiment.csv"
	YearlyCountsCSV   = "yearly_sentiment_counts.csv"
	ScoredPostsCSV    = "scored_posts.csv"
)

// ReportExporter writes each report view as a CSV table
type ReportExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewReportExporter creates a new report exporter
func NewReportExporter(paths *config.Paths, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
		logger:    logger,
	}
}

// ExportReport writes the daily, engagement and yearly tables and returns the written paths
func (e *ReportExporter) ExportReport(report domain.SentimentReport) ([]string, error) {
	written := make([]string, 0, 3)

	path, err := e.ExportDaily(report.Daily)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	if path, err = e.ExportEngagement(report.Engagement); err != nil {
		return written, err
	}
	written = append(written, path)

	if path, err = e.ExportYearly(report.Yearly); err != nil {
		return written, err
	}
	written = append(written, path)

	e.logger.Info("Report tables exported", slog.Int("files", len(written)))
	return written, nil
}

// ExportDaily writes date,mean_sentiment
func (e *ReportExporter) ExportDaily(rows []domain.DailySentiment) (string, error) {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{row.Date, formatRatio(row.MeanSentiment)})
	}

	path, err := e.csvWriter.WriteSimpleCSV(DailySentimentCSV, []string{"date", "mean_sentiment"}, records)
	if err != nil {
		return "", fmt.Errorf("failed to write daily sentiment: %w", err)
	}
	return path, nil
}

// ExportEngagement writes metric,sentiment,mean in report metric order
func (e *ReportExporter) ExportEngagement(engagement map[domain.Metric][]domain.EngagementSummary) (string, error) {
	var records [][]string
	for _, metric := range domain.Metrics {
		for _, row := range engagement[metric] {
			records = append(records, []string{
				string(metric),
				strconv.Itoa(int(row.Sentiment)),
				formatFloat(row.Mean),
			})
		}
	}

	path, err := e.csvWriter.WriteSimpleCSV(EngagementCSV, []string{"metric", "sentiment", "mean"}, records)
	if err != nil {
		return "", fmt.Errorf("failed to write engagement summary: %w", err)
	}
	return path, nil
}

// ExportYearly writes year,count_negative,count_positive
func (e *ReportExporter) ExportYearly(rows []domain.YearlySentimentCounts) (string, error) {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			strconv.Itoa(row.Year),
			strconv.Itoa(row.CountNegative),
			strconv.Itoa(row.CountPositive),
		})
	}

	path, err := e.csvWriter.WriteSimpleCSV(YearlyCountsCSV, []string{"year", "count_negative", "count_positive"}, records)
	if err != nil {
		return "", fmt.Errorf("failed to write yearly counts: %w", err)
	}
	return path, nil
}

// ExportScoredPosts streams every classified post. Identifying columns were
// dropped on load and are never written.
func (e *ReportExporter) ExportScoredPosts(posts []domain.ScoredPost) (string, error) {
	headers := []string{"timestamp", "date", "text", "likes", "replies", "retweets", "compound", "sentiment"}
	stream, err := e.csvWriter.CreateStreamWriter(ScoredPostsCSV, headers)
	if err != nil {
		return "", fmt.Errorf("failed to create scored posts file: %w", err)
	}

	for i, p := range posts {
		record := []string{
			p.Timestamp.Format("2006-01-02 15:04:05Z07:00"),
			p.Date(),
			p.Text,
			formatInt(p.Likes),
			formatInt(p.Replies),
			formatInt(p.Retweets),
			strconv.FormatFloat(p.Compound, 'f', 4, 64),
			strconv.Itoa(int(p.Sentiment)),
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write post %d: %w", i, err)
		}
	}

	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("failed to close scored posts file: %w", err)
	}
	e.logger.Debug("Scored posts exported", slog.Int("rows", stream.Rows()))
	return stream.Path(), nil
}

// ExportPrices writes date,close to path; relative paths land in the reports directory
func (e *ReportExporter) ExportPrices(series domain.PriceSeries, path string) (string, error) {
	if path == "" {
		path = e.paths.GetPricesCSVPath(series.Symbol, series.Start, series.End)
	}

	records := make([][]string, 0, series.Len())
	for _, p := range series.Points {
		records = append(records, []string{p.Date.Format(domain.DateLayout), formatDecimal(p.Close)})
	}

	written, err := e.csvWriter.WriteSimpleCSV(path, []string{"date", "close"}, records)
	if err != nil {
		return "", fmt.Errorf("failed to write price series: %w", err)
	}
	e.logger.Info("Price series exported",
		slog.String("symbol", series.Symbol),
		slog.Int("points", series.Len()),
		slog.String("path", written))
	return written, nil
}
