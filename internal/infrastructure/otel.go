package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"tweetpulse/internal/config"
)

// InstrumentationName scopes every tracer and meter the pipeline creates
const InstrumentationName = "tweetpulse"

// TelemetryOptions selects which signals are exported and where
type TelemetryOptions struct {
	ServiceVersion string
	EnableTracing  bool
	EnableMetrics  bool

	// TracesFile receives JSON spans; empty discards them
	TracesFile string
	// SpanProcessors are registered in addition to the file exporter
	SpanProcessors []sdktrace.SpanProcessor
}

// OptionsFromConfig maps the telemetry section of the config onto TelemetryOptions
func OptionsFromConfig(cfg config.TelemetryConfig, paths *config.Paths) TelemetryOptions {
	return TelemetryOptions{
		ServiceVersion: config.AppVersion,
		EnableTracing:  cfg.EnableTracing,
		EnableMetrics:  cfg.EnableMetrics,
		TracesFile:     paths.TracesFile,
	}
}

// Telemetry holds the run's tracer and meter. Disabled signals fall back to
// no-op implementations so callers never nil-check.
type Telemetry struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	traceFile      *os.File
	logger         *slog.Logger
}

// InitializeTelemetry builds the tracer and meter providers for one pipeline run.
// Spans go to a JSON file through stdouttrace; metrics are collected into a
// private Prometheus registry and written out with WriteMetrics.
func InitializeTelemetry(opts TelemetryOptions, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	if opts.ServiceVersion == "" {
		opts.ServiceVersion = config.AppVersion
	}

	t := &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		logger: logger,
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.AppName),
		semconv.ServiceVersion(opts.ServiceVersion),
	)

	if opts.EnableTracing {
		if err := t.initializeTracing(opts, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if opts.EnableMetrics {
		if err := t.initializeMetrics(opts, res); err != nil {
			_ = t.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.Debug("Telemetry initialized",
		slog.Bool("tracing_enabled", opts.EnableTracing),
		slog.Bool("metrics_enabled", opts.EnableMetrics),
		slog.String("traces_file", opts.TracesFile))

	return t, nil
}

func (t *Telemetry) initializeTracing(opts TelemetryOptions, res *resource.Resource) error {
	var out io.Writer = io.Discard
	if opts.TracesFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.TracesFile), 0755); err != nil {
			return fmt.Errorf("failed to create traces directory: %w", err)
		}
		f, err := os.OpenFile(opts.TracesFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open traces file: %w", err)
		}
		t.traceFile = f
		out = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, sp := range opts.SpanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}

	t.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	t.Tracer = t.tracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(opts.ServiceVersion))
	return nil
}

func (t *Telemetry) initializeMetrics(opts TelemetryOptions, res *resource.Resource) error {
	t.registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.meterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(opts.ServiceVersion))
	return nil
}

// Gatherer exposes the metrics registry, or nil when metrics are disabled
func (t *Telemetry) Gatherer() prometheus.Gatherer {
	if t.registry == nil {
		return nil
	}
	return t.registry
}

// WriteMetrics writes the current metric values in Prometheus text format.
// It is a no-op when metrics are disabled.
func (t *Telemetry) WriteMetrics(path string) error {
	if t.registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, t.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Shutdown flushes pending spans and releases the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
		t.tracerProvider = nil
	}

	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
		t.meterProvider = nil
	}

	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
		t.traceFile = nil
	}

	return errors.Join(errs...)
}

// StartSpan starts a span on the run's tracer
func (t *Telemetry) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddSpanEvent adds an event to the current span
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
