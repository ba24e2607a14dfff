package loader

import (
	"fmt"
	"strings"
)

// Column names recognized in the dataset header (case-insensitive)
const (
	ColTimestamp = "timestamp"
	ColText      = "text"
	ColLikes     = "likes"
	ColReplies   = "replies"
	ColRetweets  = "retweets"
)

// droppedColumns identify the author and are discarded on load
var droppedColumns = map[string]bool{
	"user":     true,
	"fullname": true,
	"url":      true,
}

// columnMap holds the header index of every known column; -1 when absent
type columnMap struct {
	timestamp int
	text      int
	likes     int
	replies   int
	retweets  int

	// extra maps pass-through column indices to their cleaned names
	extra map[int]string
}

// missingEngagement lists the engagement columns the header lacks
func (m columnMap) missingEngagement() []string {
	var missing []string
	if m.likes < 0 {
		missing = append(missing, ColLikes)
	}
	if m.replies < 0 {
		missing = append(missing, ColReplies)
	}
	if m.retweets < 0 {
		missing = append(missing, ColRetweets)
	}
	return missing
}

// cleanHeader strips BOMs, zero-width characters and surrounding space, and lower-cases
func cleanHeader(col string) string {
	col = strings.TrimSpace(col)
	col = strings.TrimPrefix(col, "\ufeff")
	col = strings.TrimLeft(col, "\u200B\u200C\u200D\u2060\uFEFF")
	return strings.ToLower(strings.TrimSpace(col))
}

// mapColumns locates the known columns in header. The first occurrence of a
// duplicated name wins.
func mapColumns(header []string) (columnMap, error) {
	m := columnMap{
		timestamp: -1,
		text:      -1,
		likes:     -1,
		replies:   -1,
		retweets:  -1,
		extra:     make(map[int]string),
	}

	set := func(dst *int, i int) {
		if *dst < 0 {
			*dst = i
		}
	}

	for i, raw := range header {
		name := cleanHeader(raw)
		switch {
		case name == ColTimestamp:
			set(&m.timestamp, i)
		case name == ColText:
			set(&m.text, i)
		case name == ColLikes:
			set(&m.likes, i)
		case name == ColReplies:
			set(&m.replies, i)
		case name == ColRetweets:
			set(&m.retweets, i)
		case droppedColumns[name], name == "":
		default:
			m.extra[i] = name
		}
	}

	var missing []string
	if m.timestamp < 0 {
		missing = append(missing, ColTimestamp)
	}
	if m.text < 0 {
		missing = append(missing, ColText)
	}
	if len(missing) > 0 {
		return m, fmt.Errorf("required columns not found: %v. Header: %v", missing, header)
	}
	return m, nil
}
