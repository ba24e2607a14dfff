// Package testutil provides mock steps and collaborators for operation tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"tweetpulse/internal/operations"
	"tweetpulse/pkg/contracts/domain"
)

// MockStage is a configurable implementation of operations.Step
type MockStage struct {
	IDValue   string
	NameValue string

	// Configurable functions
	ExecuteFunc  func(ctx context.Context, state *operations.OperationState) error
	ValidateFunc func(state *operations.OperationState) error

	// Call tracking
	mu            sync.Mutex
	ExecuteCalls  int
	ValidateCalls int
	ExecutedAt    time.Time
}

// NewMockStage creates a mock step that succeeds
func NewMockStage(id string) *MockStage {
	return &MockStage{IDValue: id, NameValue: id + " step"}
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// Execute runs ExecuteFunc when set
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.mu.Lock()
	m.ExecuteCalls++
	m.ExecutedAt = time.Now()
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate runs ValidateFunc when set
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.ValidateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// GetExecuteCalls returns how many times Execute ran
func (m *MockStage) GetExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// MockPriceProvider returns a canned series or error. With Block set it
// waits for ctx to end.
type MockPriceProvider struct {
	Series domain.PriceSeries
	Err    error
	Block  bool

	mu    sync.Mutex
	Calls int
}

// DailyClose implements market.Provider
func (m *MockPriceProvider) DailyClose(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return domain.PriceSeries{}, err
	}
	if m.Err != nil {
		return domain.PriceSeries{}, m.Err
	}
	series := m.Series
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	return series, nil
}
