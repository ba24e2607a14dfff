package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tweetpulse/pkg/contracts/domain"
)

// PostsHeader is the column layout of the scraped tweets dataset
var PostsHeader = []string{"user", "fullname", "url", "timestamp", "replies", "likes", "retweets", "text"}

// WritePostsCSV writes a dataset with PostsHeader and the given rows into dir
func WritePostsCSV(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(PostsHeader); err != nil {
		t.Fatalf("write fixture header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write fixture rows: %v", err)
	}
	return path
}

// PostRow builds a dataset row in PostsHeader order
func PostRow(timestamp, text, likes, replies, retweets string) []string {
	return []string{"satoshi", "Satoshi N", "https://twitter.com/satoshi/status/1", timestamp, replies, likes, retweets, text}
}

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Scored builds a classified post for aggregation tests
func Scored(ts time.Time, sentiment domain.Sentiment, likes, replies, retweets int64) domain.ScoredPost {
	return domain.ScoredPost{
		Post: domain.Post{
			Timestamp: ts,
			Likes:     likes,
			Replies:   replies,
			Retweets:  retweets,
		},
		Sentiment: sentiment,
		Year:      ts.Year(),
	}
}
