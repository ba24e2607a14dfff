package operations

import (
	"context"
	"log/slog"
	"time"
)

// logOperationStart logs the start of a operation execution
func (m *Manager) logOperationStart(ctx context.Context, state *OperationState, steps int) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", state.ID),
		slog.String("input", state.InputPath),
		slog.Int("steps", steps))
}

// logOperationComplete logs the completion of a operation execution
func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status string) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.String("status", status),
		slog.Duration("duration", duration))
}

// logOperationError logs a operation error
func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	m.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", operationID),
		slog.String("error", err.Error()))
}

// logStageStart logs the start of a Step execution
func (m *Manager) logStageStart(ctx context.Context, operationID, stageID string) {
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("operation_id", operationID),
		slog.String("step", stageID))
}

// logStageComplete logs the completion of a Step execution
func (m *Manager) logStageComplete(ctx context.Context, operationID, stageID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("operation_id", operationID),
		slog.String("step", stageID),
		slog.Duration("duration", duration))
}

// logStageSkipped logs a Step that chose not to run
func (m *Manager) logStageSkipped(ctx context.Context, operationID, stageID, reason string) {
	m.logger.WarnContext(ctx, "stage_skipped",
		slog.String("operation_id", operationID),
		slog.String("step", stageID),
		slog.String("reason", reason))
}

// logStageError logs a Step error
func (m *Manager) logStageError(ctx context.Context, operationID, stageID string, err error) {
	m.logger.ErrorContext(ctx, "stage_error",
		slog.String("operation_id", operationID),
		slog.String("step", stageID),
		slog.String("error", err.Error()))
}
