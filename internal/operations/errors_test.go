package operations_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"tweetpulse/internal/operations"
)

func TestOperationErrorMessages(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name     string
		err      *operations.OperationError
		wantType operations.ErrorType
		want     string
	}{
		{
			name:     "validation",
			err:      operations.NewValidationError("load", cause),
			wantType: operations.ErrorTypeValidation,
			want:     "[validation] load: step validation failed: disk full",
		},
		{
			name:     "execution",
			err:      operations.NewExecutionError("export_tables", cause),
			wantType: operations.ErrorTypeExecution,
			want:     "[execution] export_tables: step execution failed: disk full",
		},
		{
			name:     "timeout",
			err:      operations.NewTimeoutError("market_prices", "5m0s", nil),
			wantType: operations.ErrorTypeTimeout,
			want:     "[timeout] market_prices: step exceeded timeout of 5m0s",
		},
		{
			name:     "fatal without step",
			err:      operations.NewFatalError("no steps registered", nil),
			wantType: operations.ErrorTypeFatal,
			want:     "[fatal] no steps registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestOperationErrorUnwrap(t *testing.T) {
	err := operations.NewCancellationError("classify", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)

	var nilErr *operations.OperationError
	assert.Nil(t, nilErr.Unwrap())
	assert.Equal(t, "unknown operation error", nilErr.Error())
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, operations.ErrorType(""), operations.GetErrorType(nil))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(errors.New("plain")))

	wrapped := fmt.Errorf("run: %w", operations.NewTimeoutError("x", "1s", nil))
	assert.Equal(t, operations.ErrorTypeTimeout, operations.GetErrorType(wrapped))
}

func TestSkipStep(t *testing.T) {
	plain := operations.SkipStep("price fetch disabled", nil)
	assert.ErrorIs(t, plain, operations.ErrSkipStep)
	assert.Equal(t, "step skipped: price fetch disabled", plain.Error())

	cause := errors.New("503")
	withCause := operations.SkipStep("price series unavailable", cause)
	assert.ErrorIs(t, withCause, operations.ErrSkipStep)
	assert.ErrorIs(t, withCause, cause)
	assert.Equal(t, "step skipped: price series unavailable: 503", withCause.Error())
}
