package operations

import (
	"sync"
	"time"

	"tweetpulse/internal/sentiment"
	"tweetpulse/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// Artifact is a file produced by a Step
type Artifact struct {
	Kind string `json:"kind"` // csv, png, xlsx
	Path string `json:"path"`
}

// OperationState represents the complete state of a operation execution.
// Steps run sequentially; each reads what earlier steps stored.
type OperationState struct {
	mu sync.RWMutex

	// Basic operation information
	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	// Step states
	Steps map[string]*StepState `json:"steps"`
	order []string

	// Run inputs
	InputPath string `json:"input_path"`

	// Data passed between steps
	Posts  []domain.Post          `json:"-"`
	Scored []domain.ScoredPost    `json:"-"`
	Stats  sentiment.Stats        `json:"stats"`
	Report domain.SentimentReport `json:"-"`
	Prices *domain.PriceSeries    `json:"-"`

	artifacts []Artifact

	// Error if operation failed
	Error error `json:"-"`
}

// NewOperationState creates a new operation state
func NewOperationState(id, inputPath string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		InputPath: inputPath,
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the operation status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage updates the state of a specific Step
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.Steps[stageID]; !exists {
		p.order = append(p.order, stageID)
	}
	p.Steps[stageID] = state
}

// StageStates returns the Step states in registration order
func (p *OperationState) StageStates() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	states := make([]*StepState, 0, len(p.order))
	for _, id := range p.order {
		states = append(states, p.Steps[id])
	}
	return states
}

// AddArtifact records a written file
func (p *OperationState) AddArtifact(kind, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artifacts = append(p.artifacts, Artifact{Kind: kind, Path: path})
}

// Artifacts returns every file written so far
func (p *OperationState) Artifacts() []Artifact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Artifact, len(p.artifacts))
	copy(out, p.artifacts)
	return out
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}
