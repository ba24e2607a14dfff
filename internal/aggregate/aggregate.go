// Package aggregate computes the grouped sentiment views over classified posts.
//
// All functions are pure and return empty, non-nil slices for empty input.
// EngagementBySentiment only reports sentiment classes that occur in the
// input, while YearlyCounts always reports both classes with zero fill.
package aggregate

import (
	"sort"

	"tweetpulse/pkg/contracts/domain"
)

// DailySentiment returns the mean sentiment label per calendar day, ascending by date
func DailySentiment(posts []domain.ScoredPost) []domain.DailySentiment {
	type acc struct{ sum, n int }
	byDate := make(map[string]*acc)

	for _, p := range posts {
		key := p.Date()
		a, ok := byDate[key]
		if !ok {
			a = &acc{}
			byDate[key] = a
		}
		a.sum += int(p.Sentiment)
		a.n++
	}

	out := make([]domain.DailySentiment, 0, len(byDate))
	for date, a := range byDate {
		out = append(out, domain.DailySentiment{
			Date:          date,
			MeanSentiment: float64(a.sum) / float64(a.n),
		})
	}
	// yyyy-MM-dd sorts lexically in date order
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// EngagementBySentiment returns the mean of metric for each sentiment class
// present in posts, ascending by sentiment. Absent classes produce no row.
func EngagementBySentiment(posts []domain.ScoredPost, metric domain.Metric) []domain.EngagementSummary {
	type acc struct {
		sum int64
		n   int
	}
	bySentiment := make(map[domain.Sentiment]*acc)

	for _, p := range posts {
		a, ok := bySentiment[p.Sentiment]
		if !ok {
			a = &acc{}
			bySentiment[p.Sentiment] = a
		}
		a.sum += metric.Value(p.Post)
		a.n++
	}

	out := make([]domain.EngagementSummary, 0, len(bySentiment))
	for s, a := range bySentiment {
		out = append(out, domain.EngagementSummary{
			Metric:    metric,
			Sentiment: s,
			Mean:      float64(a.sum) / float64(a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sentiment < out[j].Sentiment })
	return out
}

// YearlyCounts counts posts per (year, sentiment) and pivots the sentiment
// classes into columns, zero-filling absent combinations. Rows are ascending by year.
func YearlyCounts(posts []domain.ScoredPost) []domain.YearlySentimentCounts {
	byYear := make(map[int]*domain.YearlySentimentCounts)

	for _, p := range posts {
		year := p.Year
		if year == 0 {
			year = p.Timestamp.Year()
		}
		row, ok := byYear[year]
		if !ok {
			row = &domain.YearlySentimentCounts{Year: year}
			byYear[year] = row
		}
		switch p.Sentiment {
		case domain.SentimentNegative:
			row.CountNegative++
		case domain.SentimentPositive:
			row.CountPositive++
		}
	}

	out := make([]domain.YearlySentimentCounts, 0, len(byYear))
	for _, row := range byYear {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Build computes every view of the report
func Build(posts []domain.ScoredPost) domain.SentimentReport {
	engagement := make(map[domain.Metric][]domain.EngagementSummary, len(domain.Metrics))
	for _, m := range domain.Metrics {
		engagement[m] = EngagementBySentiment(posts, m)
	}

	return domain.SentimentReport{
		Daily:      DailySentiment(posts),
		Engagement: engagement,
		Yearly:     YearlyCounts(posts),
	}
}
