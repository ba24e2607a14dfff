package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetpulse/internal/sentiment"
	"tweetpulse/internal/shared/testutil"
	"tweetpulse/internal/textnorm"
	"tweetpulse/pkg/contracts/domain"
)

var (
	neg = domain.SentimentNegative
	pos = domain.SentimentPositive
)

func TestDailySentiment(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		out := DailySentiment(nil)
		require.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("single day mean is S over N", func(t *testing.T) {
		day := testutil.Day(2019, 5, 14)
		posts := []domain.ScoredPost{
			testutil.Scored(day, pos, 0, 0, 0),
			testutil.Scored(day.Add(time.Hour), neg, 0, 0, 0),
			testutil.Scored(day.Add(2*time.Hour), pos, 0, 0, 0),
		}

		out := DailySentiment(posts)
		require.Len(t, out, 1)
		assert.Equal(t, "2019-05-14", out[0].Date)
		assert.Equal(t, 2.0/3.0, out[0].MeanSentiment)
	})

	t.Run("sorted ascending across months and years", func(t *testing.T) {
		posts := []domain.ScoredPost{
			testutil.Scored(testutil.Day(2020, 1, 2), pos, 0, 0, 0),
			testutil.Scored(testutil.Day(2019, 12, 31), neg, 0, 0, 0),
			testutil.Scored(testutil.Day(2019, 2, 1), pos, 0, 0, 0),
			testutil.Scored(testutil.Day(2019, 12, 31), pos, 0, 0, 0),
		}

		out := DailySentiment(posts)
		require.Len(t, out, 3)
		assert.Equal(t, []string{"2019-02-01", "2019-12-31", "2020-01-02"},
			[]string{out[0].Date, out[1].Date, out[2].Date})
		assert.Equal(t, 0.5, out[1].MeanSentiment)
		for _, row := range out {
			assert.GreaterOrEqual(t, row.MeanSentiment, 0.0)
			assert.LessOrEqual(t, row.MeanSentiment, 1.0)
		}
	})
}

func TestEngagementBySentiment(t *testing.T) {
	day := testutil.Day(2019, 1, 1)

	t.Run("empty input", func(t *testing.T) {
		out := EngagementBySentiment(nil, domain.MetricLikes)
		require.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("both classes", func(t *testing.T) {
		posts := []domain.ScoredPost{
			testutil.Scored(day, pos, 10, 1, 0),
			testutil.Scored(day, neg, 3, 2, 5),
			testutil.Scored(day, pos, 20, 4, 1),
			testutil.Scored(day, neg, 4, 0, 0),
		}

		likes := EngagementBySentiment(posts, domain.MetricLikes)
		require.Len(t, likes, 2)
		assert.Equal(t, domain.EngagementSummary{Metric: domain.MetricLikes, Sentiment: neg, Mean: 3.5}, likes[0])
		assert.Equal(t, domain.EngagementSummary{Metric: domain.MetricLikes, Sentiment: pos, Mean: 15}, likes[1])

		replies := EngagementBySentiment(posts, domain.MetricReplies)
		assert.Equal(t, 1.0, replies[0].Mean)
		assert.Equal(t, 2.5, replies[1].Mean)

		retweets := EngagementBySentiment(posts, domain.MetricRetweets)
		assert.Equal(t, 2.5, retweets[0].Mean)
		assert.Equal(t, 0.5, retweets[1].Mean)
	})

	t.Run("absent class is not fabricated", func(t *testing.T) {
		posts := []domain.ScoredPost{
			testutil.Scored(day, pos, 7, 0, 0),
			testutil.Scored(day, pos, 9, 0, 0),
		}

		out := EngagementBySentiment(posts, domain.MetricLikes)
		require.Len(t, out, 1)
		assert.Equal(t, pos, out[0].Sentiment)
		assert.Equal(t, 8.0, out[0].Mean)
	})
}

func TestYearlyCounts(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		out := YearlyCounts(nil)
		require.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("zero fills the missing class", func(t *testing.T) {
		posts := []domain.ScoredPost{
			testutil.Scored(testutil.Day(2020, 3, 1), pos, 0, 0, 0),
			testutil.Scored(testutil.Day(2020, 4, 1), pos, 0, 0, 0),
			testutil.Scored(testutil.Day(2020, 5, 1), pos, 0, 0, 0),
		}

		out := YearlyCounts(posts)
		require.Len(t, out, 1)
		assert.Equal(t, domain.YearlySentimentCounts{Year: 2020, CountNegative: 0, CountPositive: 3}, out[0])
	})

	t.Run("ascending by year", func(t *testing.T) {
		posts := []domain.ScoredPost{
			testutil.Scored(testutil.Day(2019, 1, 1), neg, 0, 0, 0),
			testutil.Scored(testutil.Day(2017, 1, 1), pos, 0, 0, 0),
			testutil.Scored(testutil.Day(2019, 6, 1), pos, 0, 0, 0),
			testutil.Scored(testutil.Day(2019, 7, 1), neg, 0, 0, 0),
		}

		out := YearlyCounts(posts)
		require.Len(t, out, 2)
		assert.Equal(t, domain.YearlySentimentCounts{Year: 2017, CountNegative: 0, CountPositive: 1}, out[0])
		assert.Equal(t, domain.YearlySentimentCounts{Year: 2019, CountNegative: 2, CountPositive: 1}, out[1])
		assert.Equal(t, 3, out[1].Total())
	})

	t.Run("year derived from timestamp when unset", func(t *testing.T) {
		p := testutil.Scored(testutil.Day(2016, 8, 8), neg, 0, 0, 0)
		p.Year = 0

		out := YearlyCounts([]domain.ScoredPost{p})
		require.Len(t, out, 1)
		assert.Equal(t, 2016, out[0].Year)
	})
}

func TestBuild(t *testing.T) {
	report := Build(nil)
	assert.NotNil(t, report.Daily)
	assert.NotNil(t, report.Yearly)
	require.Len(t, report.Engagement, 3)
	for _, m := range domain.Metrics {
		assert.NotNil(t, report.Engagement[m], m)
	}
}

// TestEndToEnd runs normalization, the real VADER analyzer and aggregation
// over three posts on one day.
func TestEndToEnd(t *testing.T) {
	day := time.Date(2021, 1, 1, 9, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{Timestamp: day, Text: "good", Likes: 4},
		{Timestamp: day.Add(time.Minute), Text: "bad", Likes: 2},
		{Timestamp: day.Add(2 * time.Minute), Text: "", Likes: 0},
	}

	scorer := sentiment.NewVaderScorer()
	require.InDelta(t, 0.4404, scorer.Compound("good"), 1e-4)
	require.InDelta(t, -0.5423, scorer.Compound("bad"), 1e-4)
	require.Equal(t, 0.0, scorer.Compound(""))

	classifier := sentiment.NewClassifier(scorer, 2, nil)
	scored, err := classifier.ClassifyPosts(context.Background(), textnorm.NormalizePosts(posts))
	require.NoError(t, err)

	assert.Equal(t, []domain.Sentiment{pos, neg, pos},
		[]domain.Sentiment{scored[0].Sentiment, scored[1].Sentiment, scored[2].Sentiment})

	report := Build(scored)

	require.Len(t, report.Daily, 1)
	assert.Equal(t, "2021-01-01", report.Daily[0].Date)
	assert.Equal(t, 2.0/3.0, report.Daily[0].MeanSentiment)

	likes := report.Engagement[domain.MetricLikes]
	require.Len(t, likes, 2)
	assert.Equal(t, 2.0, likes[0].Mean)
	assert.Equal(t, 2.0, likes[1].Mean)

	require.Len(t, report.Yearly, 1)
	assert.Equal(t, domain.YearlySentimentCounts{Year: 2021, CountNegative: 1, CountPositive: 2}, report.Yearly[0])
}
