// Package sentiment assigns a binary polarity to post text using the VADER
// lexicon. The classifier is read-only after construction and may be shared
// by any number of goroutines.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/jonreiter/govader"
	"golang.org/x/sync/errgroup"

	"tweetpulse/pkg/contracts/domain"
)

// Scorer produces a compound polarity score in [-1, 1]
type Scorer interface {
	Compound(text string) float64
}

// VaderScorer scores text with the VADER lexicon and rules
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer loads the VADER lexicon
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns VADER's normalized compound score
func (s *VaderScorer) Compound(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}

// Label maps a compound score to a sentiment. Neutral text (exactly 0) is
// labelled positive.
func Label(compound float64) domain.Sentiment {
	if compound >= 0 {
		return domain.SentimentPositive
	}
	return domain.SentimentNegative
}

// ctxCheckEvery is how many posts a worker scores between cancellation checks
const ctxCheckEvery = 256

// Classifier labels text and posts
type Classifier struct {
	scorer  Scorer
	workers int
	logger  *slog.Logger
}

// NewClassifier creates a classifier. workers <= 0 uses GOMAXPROCS.
func NewClassifier(scorer Scorer, workers int, logger *slog.Logger) *Classifier {
	if scorer == nil {
		scorer = NewVaderScorer()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{scorer: scorer, workers: workers, logger: logger}
}

// Score returns the compound score and its label
func (c *Classifier) Score(text string) (float64, domain.Sentiment) {
	compound := c.scorer.Compound(text)
	return compound, Label(compound)
}

// Classify returns the sentiment label of text
func (c *Classifier) Classify(text string) domain.Sentiment {
	_, label := c.Score(text)
	return label
}

// ClassifyPosts scores every post in parallel. The result has the same length
// and order as posts; each worker writes only its own index range.
func (c *Classifier) ClassifyPosts(ctx context.Context, posts []domain.Post) ([]domain.ScoredPost, error) {
	scored := make([]domain.ScoredPost, len(posts))
	if len(posts) == 0 {
		return scored, nil
	}

	chunk := (len(posts) + c.workers - 1) / c.workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for start := 0; start < len(posts); start += chunk {
		end := min(start+chunk, len(posts))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%ctxCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				compound, label := c.Score(posts[i].Text)
				scored[i] = domain.ScoredPost{
					Post:      posts[i],
					Sentiment: label,
					Compound:  compound,
					Year:      posts[i].Timestamp.Year(),
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classification cancelled: %w", err)
	}

	c.logger.DebugContext(ctx, "Posts classified",
		slog.Int("posts", len(posts)),
		slog.Int("workers", c.workers),
		slog.Int("chunk_size", chunk))

	return scored, nil
}

// Stats summarizes a classification run
type Stats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	// Neutral counts posts whose compound score was exactly 0; they are
	// included in Positive.
	Neutral int `json:"neutral"`
}

// Tally counts labels over scored posts
func Tally(scored []domain.ScoredPost) Stats {
	stats := Stats{Total: len(scored)}
	for _, p := range scored {
		if p.Sentiment == domain.SentimentPositive {
			stats.Positive++
		} else {
			stats.Negative++
		}
		if p.Compound == 0 {
			stats.Neutral++
		}
	}
	return stats
}

// LogValue implements slog.LogValuer
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", s.Total),
		slog.Int("positive", s.Positive),
		slog.Int("negative", s.Negative),
		slog.Int("neutral", s.Neutral),
	)
}
