package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tweetpulse/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetSummary    = "Summary"
	SheetDaily      = "Daily"
	SheetEngagement = "Engagement"
	SheetYearly     = "Yearly"
	SheetPrices     = "Prices"
	SheetPosts      = "Posts"
)

const (
	colorNegative = "D62728"
	colorPositive = "2CA02C"
	colorLine     = "1F77B4"
	colorPrice    = "FF7F0E"

	chartWidth  uint = 720
	chartHeight uint = 400
)

// SummaryItem is one label/value row of the summary sheet
type SummaryItem struct {
	Label string
	Value interface{}
}

// WorkbookInput is everything the workbook can show. Prices and Posts are optional.
type WorkbookInput struct {
	Summary []SummaryItem
	Report  domain.SentimentReport
	Prices  *domain.PriceSeries
	Posts   []domain.ScoredPost
}

// WorkbookWriter builds the XLSX report with native Excel charts
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write builds the workbook and saves it at path
func (w *WorkbookWriter) Write(path string, in WorkbookInput) error {
	f := excelize.NewFile()
	defer f.Close()

	b := &workbookBuilder{f: f}
	if err := b.init(); err != nil {
		return err
	}

	steps := []sheetStep{
		{SheetSummary, func() error { return b.summary(in.Summary) }},
		{SheetDaily, func() error { return b.daily(in.Report.Daily) }},
		{SheetEngagement, func() error { return b.engagement(in.Report.Engagement) }},
		{SheetYearly, func() error { return b.yearly(in.Report.Yearly) }},
	}
	if in.Prices != nil {
		steps = append(steps, sheetStep{SheetPrices, func() error { return b.prices(*in.Prices) }})
	}
	if in.Posts != nil {
		steps = append(steps, sheetStep{SheetPosts, func() error { return b.posts(in.Posts) }})
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to build %s sheet: %w", step.name, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(f.GetSheetList())))
	return nil
}

type sheetStep struct {
	name string
	fn   func() error
}

type workbookBuilder struct {
	f      *excelize.File
	header int
}

func (b *workbookBuilder) init() error {
	if err := b.f.SetSheetName(b.f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	style, err := b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return err
	}
	b.header = style
	return nil
}

// table writes a header and rows starting at A1, creating the sheet when needed
func (b *workbookBuilder) table(sheet string, headers []string, rows [][]interface{}) error {
	if idx, _ := b.f.GetSheetIndex(sheet); idx < 0 {
		if _, err := b.f.NewSheet(sheet); err != nil {
			return err
		}
	}

	head := make([]interface{}, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := b.f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := b.f.SetCellStyle(sheet, "A1", last+"1", b.header); err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, "A", last, 16); err != nil {
		return err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := b.f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// ref returns an absolute reference to rows [2, n+1] of column col
func ref(sheet, col string, n int) string {
	return fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, col, col, n+1)
}

func title(text string) []excelize.RichTextRun {
	return []excelize.RichTextRun{{Text: text}}
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func (b *workbookBuilder) summary(items []SummaryItem) error {
	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, []interface{}{item.Label, item.Value})
	}
	return b.table(SheetSummary, []string{"Item", "Value"}, rows)
}

func (b *workbookBuilder) daily(daily []domain.DailySentiment) error {
	rows := make([][]interface{}, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, []interface{}{d.Date, d.MeanSentiment})
	}
	if err := b.table(SheetDaily, []string{"Date", "Mean sentiment"}, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	lo, hi := 0.0, 1.0
	return b.f.AddChart(SheetDaily, "D2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       SheetDaily + "!$B$1",
			Categories: ref(SheetDaily, "A", len(rows)),
			Values:     ref(SheetDaily, "B", len(rows)),
			Line:       excelize.ChartLine{Width: 1.25},
			Fill:       solid(colorLine),
		}},
		Title:     title("Daily mean sentiment"),
		Legend:    excelize.ChartLegend{Position: "none"},
		YAxis:     excelize.ChartAxis{Minimum: &lo, Maximum: &hi},
		Dimension: excelize.ChartDimension{Width: chartWidth, Height: chartHeight},
	})
}

// engagement lays out one row per sentiment class and one column per metric,
// then adds one column chart per metric
func (b *workbookBuilder) engagement(engagement map[domain.Metric][]domain.EngagementSummary) error {
	means := make(map[domain.Sentiment]map[domain.Metric]float64)
	var classes []domain.Sentiment
	for _, s := range domain.Sentiments {
		for _, m := range domain.Metrics {
			for _, row := range engagement[m] {
				if row.Sentiment != s {
					continue
				}
				if means[s] == nil {
					means[s] = make(map[domain.Metric]float64)
					classes = append(classes, s)
				}
				means[s][m] = row.Mean
			}
		}
	}

	headers := []string{"Sentiment"}
	for _, m := range domain.Metrics {
		headers = append(headers, m.Title())
	}
	rows := make([][]interface{}, 0, len(classes))
	for _, s := range classes {
		row := []interface{}{s.String()}
		for _, m := range domain.Metrics {
			row = append(row, means[s][m])
		}
		rows = append(rows, row)
	}
	if err := b.table(SheetEngagement, headers, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	for i, m := range domain.Metrics {
		col, _ := excelize.ColumnNumberToName(i + 2)
		series := make([]excelize.ChartSeries, 0, len(classes))
		for j, s := range classes {
			color := colorPositive
			if s == domain.SentimentNegative {
				color = colorNegative
			}
			series = append(series, excelize.ChartSeries{
				Name:       fmt.Sprintf("%s!$A$%d", SheetEngagement, j+2),
				Categories: fmt.Sprintf("%s!$%s$1", SheetEngagement, col),
				Values:     fmt.Sprintf("%s!$%s$%d", SheetEngagement, col, j+2),
				Fill:       solid(color),
			})
		}

		anchor, _ := excelize.CoordinatesToCellName(6, 2+i*22)
		if err := b.f.AddChart(SheetEngagement, anchor, &excelize.Chart{
			Type:      excelize.Col,
			Series:    series,
			Title:     title("Mean " + string(m) + " by sentiment"),
			Legend:    excelize.ChartLegend{Position: "bottom"},
			PlotArea:  excelize.ChartPlotArea{ShowVal: true},
			Dimension: excelize.ChartDimension{Width: chartWidth / 2, Height: chartHeight},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *workbookBuilder) yearly(yearly []domain.YearlySentimentCounts) error {
	rows := make([][]interface{}, 0, len(yearly))
	for _, y := range yearly {
		rows = append(rows, []interface{}{y.Year, y.CountNegative, y.CountPositive})
	}
	if err := b.table(SheetYearly, []string{"Year", "Negative", "Positive"}, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	return b.f.AddChart(SheetYearly, "E2", &excelize.Chart{
		Type: excelize.ColStacked,
		Series: []excelize.ChartSeries{
			{
				Name:       SheetYearly + "!$B$1",
				Categories: ref(SheetYearly, "A", len(rows)),
				Values:     ref(SheetYearly, "B", len(rows)),
				Fill:       solid(colorNegative),
			},
			{
				Name:       SheetYearly + "!$C$1",
				Categories: ref(SheetYearly, "A", len(rows)),
				Values:     ref(SheetYearly, "C", len(rows)),
				Fill:       solid(colorPositive),
			},
		},
		Title:     title("Sentiment count per year"),
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea:  excelize.ChartPlotArea{ShowVal: true},
		Dimension: excelize.ChartDimension{Width: chartWidth, Height: chartHeight},
	})
}

func (b *workbookBuilder) prices(series domain.PriceSeries) error {
	rows := make([][]interface{}, 0, series.Len())
	for _, p := range series.Points {
		rows = append(rows, []interface{}{p.Date.Format(domain.DateLayout), p.Close.InexactFloat64()})
	}
	if err := b.table(SheetPrices, []string{"Date", series.Symbol + " close"}, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	return b.f.AddChart(SheetPrices, "D2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       SheetPrices + "!$B$1",
			Categories: ref(SheetPrices, "A", len(rows)),
			Values:     ref(SheetPrices, "B", len(rows)),
			Line:       excelize.ChartLine{Width: 1.25},
			Fill:       solid(colorPrice),
		}},
		Title:     title(series.Symbol + " closing price"),
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: chartWidth, Height: chartHeight},
	})
}

// posts streams the scored posts; rows beyond the sheet limit are dropped
func (b *workbookBuilder) posts(posts []domain.ScoredPost) error {
	if _, err := b.f.NewSheet(SheetPosts); err != nil {
		return err
	}
	sw, err := b.f.NewStreamWriter(SheetPosts)
	if err != nil {
		return err
	}

	header := []interface{}{"Timestamp", "Text", "Likes", "Replies", "Retweets", "Compound", "Sentiment"}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: b.header}); err != nil {
		return err
	}

	limit := min(len(posts), excelize.TotalRows-1)
	for i := 0; i < limit; i++ {
		p := posts[i]
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			p.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			p.Text,
			p.Likes,
			p.Replies,
			p.Retweets,
			p.Compound,
			int(p.Sentiment),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}
