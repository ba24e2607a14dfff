// Package loader reads the posts dataset from CSV or XLSX into domain.Post
// values, dropping the author-identifying columns and sorting by timestamp.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "tweetpulse/internal/errors"
	"tweetpulse/internal/validation"
	"tweetpulse/pkg/contracts/domain"
)

// timestampLayouts are tried in order; inputs without a zone are read as UTC
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// dateLayout reads the leading date of values no other layout matches
const dateLayout = "2006-01-02"

// ctxCheckEvery is how many rows are read between cancellation checks
const ctxCheckEvery = 1024

// Loader reads post datasets
type Loader struct {
	logger *slog.Logger
	files  *validation.FileValidator
	posts  *validation.PostValidator
}

// New creates a loader
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger,
		files:  validation.NewFileValidator(logger),
		posts:  validation.NewPostValidator(),
	}
}

// Load reads the dataset at path. The format is chosen by extension.
// Any malformed row fails the whole load; no partial result is returned.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Post, error) {
	ext, err := l.files.ValidateDataset(path)
	if err != nil {
		return nil, apperrors.NewLoadError("invalid dataset", err).WithContext("path", path)
	}

	start := time.Now()
	var posts []domain.Post
	switch ext {
	case validation.FormatXLSX:
		posts, err = l.loadXLSX(ctx, path)
	default:
		posts, err = l.loadCSV(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("path", path),
		slog.String("format", ext),
		slog.Int("posts", len(posts)),
		slog.Duration("duration", time.Since(start)))

	return posts, nil
}

func (l *Loader) loadCSV(ctx context.Context, path string) ([]domain.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open dataset", err).WithContext("path", path)
	}
	defer f.Close()

	return l.ReadCSV(ctx, f)
}

// ReadCSV parses a CSV stream whose first record is the header
func (l *Loader) ReadCSV(ctx context.Context, r io.Reader) ([]domain.Post, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewLoadError("dataset has no header row", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err)
	}

	next := func() ([]string, error) {
		record, err := reader.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, apperrors.NewParsingError("malformed CSV record", err)
		}
		return record, err
	}

	return l.readRows(ctx, header, next, false)
}

func (l *Loader) loadXLSX(ctx context.Context, path string) ([]domain.Post, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewLoadError("workbook has no sheets", nil).WithContext("path", path)
	}

	// Raw values keep date cells as serial numbers rather than display strings
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet", err).WithContext("sheet", sheets[0])
	}
	if len(rows) == 0 {
		return nil, apperrors.NewLoadError("dataset has no header row", nil).WithContext("sheet", sheets[0])
	}

	l.logger.DebugContext(ctx, "Reading workbook sheet",
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(rows)))

	i := 1
	next := func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		row := rows[i]
		i++
		return row, nil
	}

	return l.readRows(ctx, rows[0], next, true)
}

// readRows converts data rows to posts, then sorts them by timestamp
func (l *Loader) readRows(ctx context.Context, header []string, next func() ([]string, error), excelDates bool) ([]domain.Post, error) {
	cols, err := mapColumns(header)
	if err != nil {
		return nil, apperrors.NewLoadError("unsupported dataset layout", err)
	}
	if missing := cols.missingEngagement(); len(missing) > 0 {
		l.logger.WarnContext(ctx, "Engagement columns missing, counting as zero",
			slog.Any("columns", missing))
	}

	posts := make([]domain.Post, 0, 1024)
	for row := 1; ; row++ {
		if row%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}

		post, err := parseRecord(row, record, cols, excelDates)
		if err != nil {
			return nil, err
		}
		if err := l.posts.Validate(row, post); err != nil {
			return nil, apperrors.NewAppValidationError("invalid post", err).WithContext("row", row)
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.Before(posts[j].Timestamp)
	})
	return posts, nil
}

func parseRecord(row int, record []string, cols columnMap, excelDates bool) (domain.Post, error) {
	var post domain.Post

	rawTS := cell(record, cols.timestamp)
	ts, err := ParseTimestamp(rawTS, excelDates)
	if err != nil {
		return post, apperrors.NewLoadError(fmt.Sprintf("row %d: invalid timestamp %q", row, rawTS), err).
			WithContext("row", row)
	}
	post.Timestamp = ts
	post.Text = cell(record, cols.text)

	counters := []struct {
		name string
		idx  int
		dst  *int64
	}{
		{ColLikes, cols.likes, &post.Likes},
		{ColReplies, cols.replies, &post.Replies},
		{ColRetweets, cols.retweets, &post.Retweets},
	}
	for _, c := range counters {
		v, err := parseCount(cell(record, c.idx))
		if err != nil {
			return post, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid %s", row, c.name), err).
				WithContext("row", row)
		}
		*c.dst = v
	}

	for i, name := range cols.extra {
		if v := cell(record, i); v != "" {
			if post.Extra == nil {
				post.Extra = make(map[string]string, len(cols.extra))
			}
			post.Extra[name] = v
		}
	}

	return post, nil
}

// ParseTimestamp parses a dataset timestamp. With excelDates set, a bare
// number is read as an Excel serial date.
func ParseTimestamp(value string, excelDates bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}

	if excelDates {
		if serial, err := strconv.ParseFloat(value, 64); err == nil {
			return excelize.ExcelDateToTime(serial, false)
		}
	}

	if len(value) > len(dateLayout) && !isDigit(value[len(dateLayout)]) {
		if ts, err := time.Parse(dateLayout, value[:len(dateLayout)]); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

// parseCount reads an engagement counter; empty cells count as zero
func parseCount(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	// spreadsheets may store integers as floats
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not an integer", value)
	}
	return int64(f), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
