package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded during an analysis run.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	PostsLoaded      metric.Int64Counter
	PostsScored      metric.Int64Counter
	StepDuration     metric.Float64Histogram
	StepsTotal       metric.Int64Counter
	PriceRequests    metric.Int64Counter
	PricePoints      metric.Int64Counter
	ArtifactsWritten metric.Int64Counter

	Goroutines    metric.Int64Gauge
	HeapAllocated metric.Int64Gauge
}

// NewPipelineMetrics registers the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.PostsLoaded, err = meter.Int64Counter(
		"tweetpulse_posts_loaded",
		metric.WithDescription("Posts read from the input dataset"),
	); err != nil {
		return nil, err
	}

	if m.PostsScored, err = meter.Int64Counter(
		"tweetpulse_posts_scored",
		metric.WithDescription("Posts classified, by sentiment label"),
	); err != nil {
		return nil, err
	}

	if m.StepDuration, err = meter.Float64Histogram(
		"tweetpulse_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.StepsTotal, err = meter.Int64Counter(
		"tweetpulse_steps",
		metric.WithDescription("Pipeline steps executed, by outcome"),
	); err != nil {
		return nil, err
	}

	if m.PriceRequests, err = meter.Int64Counter(
		"tweetpulse_price_requests",
		metric.WithDescription("Market data HTTP requests, by status"),
	); err != nil {
		return nil, err
	}

	if m.PricePoints, err = meter.Int64Counter(
		"tweetpulse_price_points",
		metric.WithDescription("Daily closing prices received"),
	); err != nil {
		return nil, err
	}

	if m.ArtifactsWritten, err = meter.Int64Counter(
		"tweetpulse_artifacts_written",
		metric.WithDescription("Charts, tables and workbooks written, by kind"),
	); err != nil {
		return nil, err
	}

	if m.Goroutines, err = meter.Int64Gauge(
		"tweetpulse_goroutines",
		metric.WithDescription("Number of goroutines at the end of the run"),
	); err != nil {
		return nil, err
	}

	if m.HeapAllocated, err = meter.Int64Gauge(
		"tweetpulse_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated at the end of the run"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordPostsLoaded counts posts read from the dataset
func (m *PipelineMetrics) RecordPostsLoaded(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.PostsLoaded.Add(ctx, int64(n))
}

// RecordPostsScored counts classified posts for one sentiment label
func (m *PipelineMetrics) RecordPostsScored(ctx context.Context, label string, n int) {
	if m == nil {
		return
	}
	m.PostsScored.Add(ctx, int64(n), metric.WithAttributes(attribute.String("sentiment", label)))
}

// RecordStep records the duration and outcome of a pipeline step
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.String("status", status),
	)
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordPriceRequest counts a market data request by HTTP status (0 for transport errors)
func (m *PipelineMetrics) RecordPriceRequest(ctx context.Context, status int) {
	if m == nil {
		return
	}
	m.PriceRequests.Add(ctx, 1, metric.WithAttributes(attribute.Int("status", status)))
}

// RecordPricePoints counts the closing prices kept from a response
func (m *PipelineMetrics) RecordPricePoints(ctx context.Context, symbol string, n int) {
	if m == nil {
		return
	}
	m.PricePoints.Add(ctx, int64(n), metric.WithAttributes(attribute.String("symbol", symbol)))
}

// RecordArtifact counts an output file by kind (csv, png, xlsx)
func (m *PipelineMetrics) RecordArtifact(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ArtifactsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRuntime snapshots goroutine count and heap usage
func (m *PipelineMetrics) RecordRuntime(ctx context.Context) {
	if m == nil {
		return
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.Goroutines.Record(ctx, int64(runtime.NumGoroutine()))
	m.HeapAllocated.Record(ctx, int64(mem.HeapAlloc))
}
