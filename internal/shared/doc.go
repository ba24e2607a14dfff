// Package shared holds helpers used across the TweetPulse packages.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and fixture builders for tweet datasets and scored posts:
//
//	logger, handler := testutil.NewTestLogger(t)
//	path := testutil.WritePostsCSV(t, t.TempDir(), "tweets.csv", rows)
package shared
