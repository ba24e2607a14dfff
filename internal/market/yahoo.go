package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"tweetpulse/internal/config"
	apperrors "tweetpulse/internal/errors"
	"tweetpulse/internal/infrastructure"
	"tweetpulse/internal/retry"
	"tweetpulse/pkg/contracts/domain"
)

const (
	chartPath = "/v8/finance/chart/"
	userAgent = "Mozilla/5.0 (compatible; TweetPulse/" + config.AppVersion + ")"

	// maxErrorBody bounds how much of an error response is kept
	maxErrorBody = 512
)

// chartResponse is the subset of the chart endpoint payload that is read
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []decimal.NullDecimal `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// YahooProvider reads daily closes from the Yahoo Finance chart API
type YahooProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	policy  retry.Policy
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// Option customizes a YahooProvider
type Option func(*YahooProvider)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) Option {
	return func(p *YahooProvider) { p.client = c }
}

// WithMetrics records request and point counts
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(p *YahooProvider) { p.metrics = m }
}

// WithRetryPolicy overrides the policy derived from config
func WithRetryPolicy(policy retry.Policy) Option {
	return func(p *YahooProvider) { p.policy = policy }
}

// NewYahooProvider creates a provider from the market configuration
func NewYahooProvider(cfg config.MarketConfig, logger *slog.Logger, opts ...Option) *YahooProvider {
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = config.DefaultRequestsPerSec
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}

	p := &YahooProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		policy: retry.Policy{
			MaxAttempts:      cfg.MaxAttempts,
			InitialBackoff:   cfg.InitialBackoff,
			RateLimitBackoff: cfg.RateLimitWait,
		},
		logger: infrastructure.WithComponent(logger, "market"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.policy.OnRetry == nil {
		p.policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
			p.logger.Warn("Price request failed, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))
		}
	}
	return p
}

// DailyClose fetches one close per UTC day for symbol in [start, end).
// Days whose close is null are skipped.
func (p *YahooProvider) DailyClose(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	start, end = dayUTC(start), dayUTC(end)
	series := domain.PriceSeries{Symbol: symbol, Start: start, End: end, Points: []domain.PricePoint{}}

	if strings.TrimSpace(symbol) == "" {
		return series, apperrors.NewAppValidationError("symbol is required", nil)
	}
	if !end.After(start) {
		return series, apperrors.NewAppValidationError(
			fmt.Sprintf("end %s must be after start %s", end.Format(domain.DateLayout), start.Format(domain.DateLayout)), nil)
	}

	infrastructure.AddSpanEvent(ctx, "market.fetch",
		attribute.String("symbol", symbol),
		attribute.String("start", start.Format(domain.DateLayout)),
		attribute.String("end", end.Format(domain.DateLayout)))

	fetchStart := time.Now()
	payload, err := retry.Do(ctx, p.policy, classifyFetchError, func(ctx context.Context) (*chartResponse, error) {
		return p.fetch(ctx, symbol, start, end)
	})
	if err != nil {
		appErr := apperrors.NewNetworkError("price fetch failed", err).
			WithContext("symbol", symbol)
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			appErr = appErr.Retryable()
		}
		return series, appErr
	}

	points, err := closesFromChart(payload, start, end)
	if err != nil {
		return series, apperrors.NewParsingError("unexpected chart payload", err).WithContext("symbol", symbol)
	}
	series.Points = points

	p.metrics.RecordPricePoints(ctx, symbol, len(points))
	p.logger.InfoContext(ctx, "Price series fetched",
		slog.String("symbol", symbol),
		slog.Int("points", len(points)),
		slog.Duration("duration", time.Since(fetchStart)))

	return series, nil
}

// fetch performs a single rate-limited request
func (p *YahooProvider) fetch(ctx context.Context, symbol string, start, end time.Time) (*chartResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.chartURL(symbol, start, end), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.metrics.RecordPriceRequest(ctx, 0)
		return nil, err
	}
	defer resp.Body.Close()
	p.metrics.RecordPriceRequest(ctx, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	return &payload, nil
}

func (p *YahooProvider) chartURL(symbol string, start, end time.Time) string {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	return p.baseURL + chartPath + url.PathEscape(symbol) + "?" + q.Encode()
}

// closesFromChart pairs timestamps with closes, keeping the last close of
// each UTC day inside [start, end)
func closesFromChart(payload *chartResponse, start, end time.Time) ([]domain.PricePoint, error) {
	points := []domain.PricePoint{}
	if len(payload.Chart.Result) == 0 {
		return points, nil
	}

	result := payload.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return points, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%d timestamps without quotes", len(result.Timestamp))
	}
	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("%d timestamps but %d closes", len(result.Timestamp), len(closes))
	}

	for i, ts := range result.Timestamp {
		if !closes[i].Valid {
			continue
		}
		day := dayUTC(time.Unix(ts, 0))
		if day.Before(start) || !day.Before(end) {
			continue
		}
		point := domain.PricePoint{Date: day, Close: closes[i].Decimal}
		if n := len(points); n > 0 && points[n-1].Date.Equal(day) {
			points[n-1] = point
			continue
		}
		points = append(points, point)
	}
	return points, nil
}
