package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"tweetpulse/internal/infrastructure"
)

// OperationTracer provides OpenTelemetry instrumentation for operation runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer over the run's telemetry. A nil
// telemetry produces no spans; nil metrics record nothing.
func NewOperationTracer(telemetry *infrastructure.Telemetry, metrics *infrastructure.PipelineMetrics) *OperationTracer {
	tracer := tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	if telemetry != nil && telemetry.Tracer != nil {
		tracer = telemetry.Tracer
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// TraceOperationExecution creates a span for the entire operation execution
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, state *OperationState) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("operation.input", state.InputPath),
		),
	)
}

// TraceStageExecution creates a span for individual Step execution
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID string, step Step) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStageCompletion ends the Step span and records its outcome
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, status StepStatus, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("step.status", string(status)),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	switch status {
	case StepStatusFailed:
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	case StepStatusSkipped:
		if err != nil {
			span.AddEvent("step.skipped", trace.WithAttributes(attribute.String("reason", err.Error())))
		}
		span.SetStatus(codes.Ok, "")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	pt.metrics.RecordStep(ctx, stepID, string(status), duration)
}

// RecordOperationCompletion ends the operation span
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, state *OperationState) {
	span.SetAttributes(
		attribute.String("operation.status", string(state.GetStatus())),
		attribute.Float64("operation.duration_seconds", state.Duration().Seconds()),
		attribute.Int("operation.artifacts", len(state.Artifacts())),
	)
	if state.Error != nil {
		span.RecordError(state.Error)
		span.SetStatus(codes.Error, state.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	pt.metrics.RecordRuntime(ctx)
}
