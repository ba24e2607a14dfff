// Package retry runs an operation with bounded attempts and backoff. A
// Classify function decides per error whether to stop, retry with the
// exponential backoff, or wait the longer rate-limit backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

type Action int

const (
	Stop  Action = iota // permanent error, abort immediately
	Retry               // transient error, use normal backoff
	After               // rate-limited, use longer backoff
)

func (a Action) String() string {
	switch a {
	case Stop:
		return "stop"
	case Retry:
		return "retry"
	case After:
		return "after"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration
	// MaxBackoff caps the doubled backoff; zero means uncapped
	MaxBackoff time.Duration
	OnRetry    func(attempt int, err error, backoff time.Duration)
}

type Classify func(err error) Action
type Operation[T any] func(ctx context.Context) (T, error)

// Do calls op until it succeeds, classify returns Stop, MaxAttempts is
// reached or ctx is done. Attempts below one are treated as one.
func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("context cancelled before attempt %d: %w", attempt, err)
		}

		val, err := op(ctx)
		if err == nil {
			return val, nil
		}

		action := classify(err)
		if action == Stop {
			return zero, &PermanentError{Err: err}
		}

		if attempt >= attempts {
			return zero, &ExhaustedError{Attempts: attempts, Err: err}
		}

		wait := backoff
		if action == After && p.RateLimitBackoff > wait {
			wait = p.RateLimitBackoff
		}
		if p.MaxBackoff > 0 && wait > p.MaxBackoff {
			wait = p.MaxBackoff
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			backoff *= 2
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// PermanentError wraps an error classified as Stop
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// ExhaustedError wraps the last error once every attempt has failed
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}
func (e *ExhaustedError) Unwrap() error { return e.Err }
