package charts

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"tweetpulse/pkg/contracts/domain"
)

// DailySentiment draws the mean daily sentiment as a line on a fixed [0, 1] axis
func (r *Renderer) DailySentiment(w io.Writer, rows []domain.DailySentiment) error {
	if len(rows) == 0 {
		return ErrInsufficientData
	}

	xs := make([]time.Time, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse(domain.DateLayout, row.Date)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", row.Date, err)
		}
		xs = append(xs, day)
		ys = append(ys, row.MeanSentiment)
	}

	xAxis := chart.XAxis{
		Name:           "Date",
		ValueFormatter: chart.TimeDateValueFormatter,
	}
	line := chart.Style{StrokeColor: colorLine, StrokeWidth: 1.5}
	// a single day has no x extent of its own
	if len(xs) == 1 {
		xAxis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(xs[0].AddDate(0, 0, -1)),
			Max: chart.TimeToFloat64(xs[0].AddDate(0, 0, 1)),
		}
		line.DotColor = colorLine
		line.DotWidth = 4
	}

	graph := chart.Chart{
		Title:      "Daily mean sentiment",
		TitleStyle: r.titleStyle(),
		Width:      r.Width,
		Height:     r.Height,
		Background: r.background(),
		XAxis:      xAxis,
		YAxis: chart.YAxis{
			Name:  "Mean sentiment",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Mean sentiment",
				XValues: xs,
				YValues: ys,
				Style:   line,
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

// EngagementLabel formats a bar value: likes without decimals, replies and
// retweets with two
func EngagementLabel(metric domain.Metric, value float64) string {
	if metric == domain.MetricLikes {
		return fmt.Sprintf("%.0f", value)
	}
	return fmt.Sprintf("%.2f", value)
}

// Engagement draws one bar per sentiment class present in rows
func (r *Renderer) Engagement(w io.Writer, metric domain.Metric, rows []domain.EngagementSummary) error {
	if len(rows) == 0 {
		return ErrInsufficientData
	}

	maxMean := 0.0
	bars := make([]chart.Value, 0, len(rows))
	for _, row := range rows {
		maxMean = math.Max(maxMean, row.Mean)
		color := SentimentColor(row.Sentiment)
		bars = append(bars, chart.Value{
			Value: row.Mean,
			Label: fmt.Sprintf("%d: %s", int(row.Sentiment), EngagementLabel(metric, row.Mean)),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}
	yMax := maxMean * 1.1
	// all-zero means still get a drawable axis
	if yMax <= 0 {
		yMax = 1
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("Mean %s by sentiment", metric),
		TitleStyle: r.titleStyle(),
		Width:      r.Width,
		Height:     r.Height,
		Background: r.background(),
		BarWidth:   r.Width / 6,
		BarSpacing: r.Width / 12,
		XAxis:      chart.Style{FontSize: 12},
		YAxis: chart.YAxis{
			Name:  "Mean " + metric.Title(),
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return EngagementLabel(metric, f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

// SegmentLabel returns the label for a stacked segment, empty when count does
// not exceed LabelThreshold
func SegmentLabel(count int) string {
	if count > LabelThreshold {
		return fmt.Sprintf("%d", count)
	}
	return ""
}

// YearlyCounts draws negative and positive counts stacked per year
func (r *Renderer) YearlyCounts(w io.Writer, rows []domain.YearlySentimentCounts) error {
	total := 0
	for _, row := range rows {
		total += row.Total()
	}
	if total == 0 {
		return ErrInsufficientData
	}

	bars := make([]chart.StackedBar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, chart.StackedBar{
			Name: fmt.Sprintf("%d", row.Year),
			Values: []chart.Value{
				{
					Value: float64(row.CountNegative),
					Label: SegmentLabel(row.CountNegative),
					Style: chart.Style{FillColor: colorNegative, StrokeColor: colorNegative},
				},
				{
					Value: float64(row.CountPositive),
					Label: SegmentLabel(row.CountPositive),
					Style: chart.Style{FillColor: colorPositive, StrokeColor: colorPositive},
				},
			},
		})
	}

	graph := chart.StackedBarChart{
		Title:      "Sentiment count per year",
		TitleStyle: r.titleStyle(),
		Width:      r.Width,
		Height:     r.Height,
		Background: r.background(),
		BarSpacing: 20,
		XAxis:      chart.Style{FontSize: 12},
		YAxis:      chart.Style{FontSize: 10},
		Bars:       bars,
	}
	return graph.Render(chart.PNG, w)
}
