package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Manager runs the registered steps in order. The first failing Step halts
// the operation; steps already finished keep their outputs and the rest are
// marked skipped.
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger,
	}
}

// GetRegistry returns the step registry
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered Step against state
func (m *Manager) Execute(ctx context.Context, state *OperationState) (*OperationResponse, error) {
	steps := m.registry.List()
	if len(steps) == 0 {
		err := NewFatalError("no steps registered", nil)
		state.Fail(err)
		return m.createResponse(state), err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, state)
	state.Start()
	m.logOperationStart(ctx, state, len(steps))

	err := m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state)
	if err != nil {
		m.logOperationError(ctx, state.ID, err)
	}
	m.logOperationComplete(ctx, state.ID, state.Duration(), string(state.GetStatus()))

	return m.createResponse(state), err
}

// executeSequential executes steps in registration order
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.DebugContext(ctx, "executing_stage",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and executes a single Step under its timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError("Step state not found: "+step.ID(), nil)
	}

	stageCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step)
	m.logStageStart(stageCtx, state.ID, step.ID())
	stepState.Start()
	start := time.Now()

	if err := step.Validate(state); err != nil {
		stepState.Fail(err)
		m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), StepStatusFailed, time.Since(start), err)
		return NewValidationError(step.ID(), err)
	}

	timeout := m.config.GetStageTimeout(step.ID())
	execCtx, cancel := context.WithTimeout(stageCtx, timeout)
	defer cancel()

	err := step.Execute(execCtx, state)
	duration := time.Since(start)

	switch {
	case err == nil:
		stepState.Complete()
		m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), StepStatusCompleted, duration, nil)
		m.logStageComplete(stageCtx, state.ID, step.ID(), duration)
		return nil

	case errors.Is(err, ErrSkipStep):
		reason := strings.TrimPrefix(err.Error(), ErrSkipStep.Error()+": ")
		stepState.Skip(reason)
		m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), StepStatusSkipped, duration, err)
		m.logStageSkipped(stageCtx, state.ID, step.ID(), reason)
		return nil
	}

	stepState.Fail(err)
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), StepStatusFailed, duration, err)

	switch {
	case ctx.Err() != nil:
		return NewCancellationError(step.ID(), err)
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		return NewTimeoutError(step.ID(), timeout.String(), err)
	default:
		return NewExecutionError(step.ID(), err)
	}
}

// skipRemaining marks steps that will not run as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:        state.ID,
		Status:    state.GetStatus(),
		Duration:  state.Duration(),
		Steps:     state.StageStates(),
		Artifacts: state.Artifacts(),
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
