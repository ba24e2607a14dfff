package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day key used by every date grouping
const DateLayout = "2006-01-02"

// Post represents one social-media post as read from the input dataset.
// Identifying columns (author name, handle, profile URL) are never stored.
type Post struct {
	Timestamp time.Time         `json:"timestamp"`
	Text      string            `json:"text"`
	Likes     int64             `json:"likes" validate:"min=0"`
	Replies   int64             `json:"replies" validate:"min=0"`
	Retweets  int64             `json:"retweets" validate:"min=0"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Date returns the calendar day of the post as yyyy-MM-dd
func (p Post) Date() string {
	return p.Timestamp.Format(DateLayout)
}

// Sentiment is the binary polarity label assigned to a post
type Sentiment int

const (
	SentimentNegative Sentiment = 0
	SentimentPositive Sentiment = 1
)

// Sentiments lists every label in ascending order
var Sentiments = []Sentiment{SentimentNegative, SentimentPositive}

// String returns the lowercase label name
func (s Sentiment) String() string {
	switch s {
	case SentimentNegative:
		return "negative"
	case SentimentPositive:
		return "positive"
	default:
		return fmt.Sprintf("sentiment(%d)", int(s))
	}
}

// ScoredPost is a Post after normalization and classification
type ScoredPost struct {
	Post
	Sentiment Sentiment `json:"sentiment"`
	Compound  float64   `json:"compound"`
	Year      int       `json:"year"`
}

// Metric names an engagement counter of a post
type Metric string

const (
	MetricLikes    Metric = "likes"
	MetricReplies  Metric = "replies"
	MetricRetweets Metric = "retweets"
)

// Metrics lists the engagement counters in report order
var Metrics = []Metric{MetricLikes, MetricReplies, MetricRetweets}

// Value extracts the metric's counter from a post
func (m Metric) Value(p Post) int64 {
	switch m {
	case MetricLikes:
		return p.Likes
	case MetricReplies:
		return p.Replies
	case MetricRetweets:
		return p.Retweets
	default:
		return 0
	}
}

// Title returns the capitalized metric name for chart and sheet titles
func (m Metric) Title() string {
	if m == "" {
		return ""
	}
	s := string(m)
	return strings.ToUpper(s[:1]) + s[1:]
}
