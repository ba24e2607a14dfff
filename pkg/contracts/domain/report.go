package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySentiment is the mean sentiment of one calendar day
type DailySentiment struct {
	Date          string  `json:"date"`
	MeanSentiment float64 `json:"mean_sentiment"`
}

// EngagementSummary is the mean of one engagement metric for a sentiment class
type EngagementSummary struct {
	Metric    Metric    `json:"metric"`
	Sentiment Sentiment `json:"sentiment"`
	Mean      float64   `json:"mean"`
}

// YearlySentimentCounts holds the pivoted per-year sentiment counts.
// Both columns are always present; absent combinations are zero.
type YearlySentimentCounts struct {
	Year          int `json:"year"`
	CountNegative int `json:"count_negative"`
	CountPositive int `json:"count_positive"`
}

// Total returns the number of posts in the year
func (y YearlySentimentCounts) Total() int {
	return y.CountNegative + y.CountPositive
}

// SentimentReport bundles every aggregate view computed from a scored dataset
type SentimentReport struct {
	Daily      []DailySentiment               `json:"daily"`
	Engagement map[Metric][]EngagementSummary `json:"engagement"`
	Yearly     []YearlySentimentCounts        `json:"yearly"`
}

// PricePoint is a single daily close
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// PriceSeries is a date-ordered closing-price history for one symbol
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of price points
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Closes returns the close prices as float64 for charting
func (s PriceSeries) Closes() ([]time.Time, []float64) {
	dates := make([]time.Time, len(s.Points))
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		dates[i] = p.Date
		closes[i] = p.Close.InexactFloat64()
	}
	return dates, closes
}
