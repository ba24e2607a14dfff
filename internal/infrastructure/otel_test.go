package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTelemetry(t *testing.T, opts TelemetryOptions) *Telemetry {
	t.Helper()
	tel, err := InitializeTelemetry(opts, NewLogger(&bytes.Buffer{}, "debug"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	return tel
}

func TestInitializeTelemetry_Disabled(t *testing.T) {
	tel := newTestTelemetry(t, TelemetryOptions{})

	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Meter)
	assert.Nil(t, tel.Gatherer())

	// no-op providers still hand out usable spans
	_, span := tel.StartSpan(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, tel.WriteMetrics(path))
	assert.NoFileExists(t, path)
}

func TestTelemetry_TracesFile(t *testing.T) {
	tracesFile := filepath.Join(t.TempDir(), "logs", "traces.json")
	recorder := tracetest.NewSpanRecorder()

	tel, err := InitializeTelemetry(TelemetryOptions{
		EnableTracing:  true,
		TracesFile:     tracesFile,
		SpanProcessors: []sdktrace.SpanProcessor{recorder},
	}, NewLogger(&bytes.Buffer{}, "info"))
	require.NoError(t, err)

	ctx, span := tel.StartSpan(context.Background(), "load_posts", attribute.Int("rows", 3))
	AddSpanEvent(ctx, "parsed", attribute.String("file", "tweets.csv"))
	RecordError(ctx, errors.New("bad row"))
	span.End()

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tel.Shutdown(ctx2))
	// second shutdown is harmless
	require.NoError(t, tel.Shutdown(ctx2))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "load_posts", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	require.Len(t, ended[0].Events(), 2) // parsed + exception

	content, err := os.ReadFile(tracesFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name":"load_posts"`)
}

func TestTelemetry_WriteMetrics(t *testing.T) {
	tel := newTestTelemetry(t, TelemetryOptions{EnableMetrics: true})
	require.NotNil(t, tel.Gatherer())

	metrics, err := NewPipelineMetrics(tel.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordPostsLoaded(ctx, 42)
	metrics.RecordPostsScored(ctx, "positive", 30)
	metrics.RecordPostsScored(ctx, "negative", 12)
	metrics.RecordStep(ctx, "classify", "completed", 250*time.Millisecond)
	metrics.RecordPriceRequest(ctx, 200)
	metrics.RecordPricePoints(ctx, "BTC-USD", 365)
	metrics.RecordArtifact(ctx, "chart")
	metrics.RecordRuntime(ctx)

	path := filepath.Join(t.TempDir(), "reports", "metrics.prom")
	require.NoError(t, tel.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "tweetpulse_posts_loaded")
	assert.Contains(t, text, `sentiment="positive"`)
	assert.Contains(t, text, "tweetpulse_step_duration_seconds")
	assert.Contains(t, text, `symbol="BTC-USD"`)
	assert.Contains(t, text, "tweetpulse_goroutines")
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var metrics *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordPostsLoaded(ctx, 1)
		metrics.RecordPostsScored(ctx, "negative", 1)
		metrics.RecordStep(ctx, "x", "failed", time.Second)
		metrics.RecordPriceRequest(ctx, 0)
		metrics.RecordPricePoints(ctx, "BTC-USD", 1)
		metrics.RecordArtifact(ctx, "csv")
		metrics.RecordRuntime(ctx)
	})
}

func TestRecordError_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(context.Background(), errors.New("ignored"))
		RecordError(context.Background(), nil)
		AddSpanEvent(context.Background(), "ignored")
	})
}
