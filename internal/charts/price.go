package charts

import (
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"tweetpulse/pkg/contracts/domain"
)

// Price draws the closing price line of series
func (r *Renderer) Price(w io.Writer, series domain.PriceSeries) error {
	if series.Len() < 2 {
		return ErrInsufficientData
	}

	dates, closes := series.Closes()
	lo, hi := closes[0], closes[0]
	for _, c := range closes[1:] {
		lo = min(lo, c)
		hi = max(hi, c)
	}
	if lo == hi {
		pad := max(hi*0.05, 1)
		lo, hi = lo-pad, hi+pad
	}

	graph := chart.Chart{
		Title:      series.Symbol + " closing price",
		TitleStyle: r.titleStyle(),
		Width:      r.Width,
		Height:     r.Height,
		Background: r.background(),
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Close",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    series.Symbol,
				XValues: dates,
				YValues: closes,
				Style:   chart.Style{StrokeColor: colorPrice, StrokeWidth: 1.5},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}
