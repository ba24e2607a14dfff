package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"tweetpulse/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()
	defer slog.SetDefault(slog.Default())

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	logger.Debug("filtered out")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Contains(t, entry, "source")
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()
	defer slog.SetDefault(slog.Default())

	dir := t.TempDir()
	first, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(dir, "a.log")})
	require.NoError(t, err)

	second, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(dir, "b.log")})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NoFileExists(t, filepath.Join(dir, "b.log"))
}

func TestCreateLogger_EmptyFilePath(t *testing.T) {
	_, err := createLogger(config.LoggingConfig{Output: "both"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestCreateLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := createLogger(config.LoggingConfig{Level: "warn", Output: "console"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with trace")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-123", entry["trace_id"])
	assert.NotContains(t, entry, "span_id")
}

func TestSpanIDInjection(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.InfoContext(ctx, "inside span")
	span.End()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["otel_trace_id"])
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	// existing IDs are kept
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
}

func TestWithComponentAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(NewLogger(&buf, "info"), "loader")
	WithError(logger, assert.AnError).Info("failed")

	out := buf.String()
	assert.Contains(t, out, `"component":"loader"`)
	assert.Contains(t, out, assert.AnError.Error())
	assert.Same(t, logger, WithError(logger, nil))
}

func TestDefaultLoggingConfig(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	cfg := DefaultLoggingConfig(paths)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "both", cfg.Output)
	assert.Equal(t, filepath.Join(paths.LogsDir, "tweetpulse.log"), cfg.FilePath)
}
