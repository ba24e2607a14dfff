// Package charts renders the report views as PNG images with go-chart.
//
// Every renderer writes to an io.Writer and returns ErrInsufficientData when
// the input cannot produce a meaningful chart. Callers are expected to skip
// that chart rather than fail the run.
package charts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tweetpulse/internal/config"
	"tweetpulse/pkg/contracts/domain"
)

// ErrInsufficientData is returned when a chart has nothing to plot
var ErrInsufficientData = errors.New("insufficient data for chart")

// LabelThreshold is the count a stacked segment must exceed to be labelled
const LabelThreshold = 100

// Chart file names
const (
	DailySentimentFile = "daily_sentiment.png"
	YearlyCountsFile   = "yearly_sentiment_counts.png"
)

// EngagementFile returns the file name of the engagement chart for metric
func EngagementFile(metric domain.Metric) string {
	return "mean_" + string(metric) + "_by_sentiment.png"
}

// PriceFile returns the file name of the price chart for symbol
func PriceFile(symbol string) string {
	return "price_" + strings.ToLower(strings.NewReplacer("/", "_", "^", "").Replace(symbol)) + ".png"
}

var (
	colorNegative = drawing.ColorFromHex("d62728")
	colorPositive = drawing.ColorFromHex("2ca02c")
	colorLine     = drawing.ColorFromHex("1f77b4")
	colorPrice    = drawing.ColorFromHex("ff7f0e")
)

// SentimentColor returns red for negative and green for positive
func SentimentColor(s domain.Sentiment) drawing.Color {
	if s == domain.SentimentNegative {
		return colorNegative
	}
	return colorPositive
}

// Renderer holds the canvas size shared by every chart
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer creates a renderer; non-positive sizes fall back to defaults
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = config.DefaultChartWidth
	}
	if height <= 0 {
		height = config.DefaultChartHeight
	}
	return &Renderer{Width: width, Height: height}
}

// RenderFunc draws one chart into w
type RenderFunc func(w io.Writer) error

// WriteFile renders into path, removing the partial file on failure
func WriteFile(path string, render RenderFunc) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close chart file: %w", err)
	}
	return nil
}

func (r *Renderer) titleStyle() chart.Style {
	return chart.Style{FontSize: 14}
}

func (r *Renderer) background() chart.Style {
	return chart.Style{
		Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
	}
}
