// Package market fetches daily closing prices for a ticker symbol.
package market

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"tweetpulse/internal/retry"
	"tweetpulse/pkg/contracts/domain"
)

// Provider returns the daily closes of symbol over [start, end)
type Provider interface {
	DailyClose(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error)
}

// StatusError is returned for a non-200 response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// classifyFetchError maps a request failure to a retry action: 429 waits the
// rate-limit backoff, 5xx and transport failures back off exponentially, and
// everything else stops.
func classifyFetchError(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// a per-request timeout surfaces as a net.Error below
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return retry.Retry
		}
		return retry.Stop
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return retry.After
		case statusErr.StatusCode >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.Retry
	}
	return retry.Stop
}

// dayUTC truncates t to midnight UTC
func dayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
