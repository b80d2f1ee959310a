package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Outcomes recorded on bmicalc_requests_total.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeInternal = "internal_error"
)

// Config controls telemetry setup.
type Config struct {
	Enabled  bool
	Endpoint string
	Protocol string // grpc | http
	Service  string
	Version  string
}

// Provider wires tracer/meter providers and exposes helpers.
type Provider struct {
	Enabled bool
	tracer  trace.Tracer
	meter   metric.Meter

	requestsCounter       metric.Int64Counter
	requestDuration       metric.Float64Histogram
	shutdownTraceProvider func(context.Context) error
	shutdownMeterProvider func(context.Context) error
}

// NewNoop returns a provider whose instruments discard everything.
func NewNoop() *Provider {
	p := &Provider{
		Enabled: false,
		tracer:  tracenoop.NewTracerProvider().Tracer(""),
		meter:   metricnoop.NewMeterProvider().Meter(""),
	}
	p.initInstruments()
	return p
}

// NewProvider configures OTLP exporters and providers. When disabled, returns
// no-op providers.
func NewProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*Provider, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.Enabled {
		return NewNoop(), nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	protocol := strings.ToLower(strings.TrimSpace(cfg.Protocol))
	logger.Info("telemetry enabled",
		zap.String("protocol", protocol),
		zap.String("endpoint", cfg.Endpoint),
	)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.Service),
			attribute.String("service.version", cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	traceExp, metricExp, err := newExporters(ctx, protocol, cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
	)
	otel.SetMeterProvider(mp)

	p := &Provider{
		Enabled:               true,
		tracer:                tp.Tracer("bmicalc"),
		meter:                 mp.Meter("bmicalc"),
		shutdownTraceProvider: tp.Shutdown,
		shutdownMeterProvider: mp.Shutdown,
	}
	p.initInstruments()
	return p, nil
}

type exporterFactory struct {
	trace  func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error)
	metric func(ctx context.Context, endpoint string) (sdkmetric.Exporter, error)
}

var exporterFactories = map[string]exporterFactory{
	"grpc": {
		trace: func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
			return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(endpoint), otlptracegrpc.WithInsecure())
		},
		metric: func(ctx context.Context, endpoint string) (sdkmetric.Exporter, error) {
			return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(endpoint), otlpmetricgrpc.WithInsecure())
		},
	},
	"http": {
		trace: func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
			return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
		},
		metric: func(ctx context.Context, endpoint string) (sdkmetric.Exporter, error) {
			return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(endpoint), otlpmetrichttp.WithInsecure())
		},
	},
}

// newExporters builds the OTLP trace and metric exporters for protocol. A
// trace exporter is shut down again if the metric exporter cannot be built.
func newExporters(ctx context.Context, protocol, endpoint string) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	if protocol == "" {
		protocol = "grpc"
	}
	f, ok := exporterFactories[protocol]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported telemetry protocol %q", protocol)
	}

	traceExp, err := f.trace(ctx, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("otlp trace exporter: %w", err)
	}
	metricExp, err := f.metric(ctx, endpoint)
	if err != nil {
		_ = traceExp.Shutdown(ctx)
		return nil, nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	return traceExp, metricExp, nil
}

// newWithMeter is used by tests to observe instruments through a manual reader.
func newWithMeter(meter metric.Meter) *Provider {
	p := &Provider{
		tracer: tracenoop.NewTracerProvider().Tracer(""),
		meter:  meter,
	}
	p.initInstruments()
	return p
}

func (p *Provider) initInstruments() {
	if p == nil {
		return
	}
	// Instrument errors are ignored; telemetry is best-effort.
	p.requestsCounter, _ = p.meter.Int64Counter("bmicalc_requests_total")
	p.requestDuration, _ = p.meter.Float64Histogram("bmicalc_request_duration_ms")
}

// Tracer returns the tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return tracenoop.NewTracerProvider().Tracer("")
	}
	return p.tracer
}

// Shutdown flushes providers.
func (p *Provider) Shutdown(ctx context.Context) {
	if p == nil {
		return
	}
	if p.shutdownTraceProvider != nil {
		_ = p.shutdownTraceProvider(ctx)
	}
	if p.shutdownMeterProvider != nil {
		_ = p.shutdownMeterProvider(ctx)
	}
}

// StartCalculation opens the span wrapping one classification request.
func (p *Provider) StartCalculation(ctx context.Context, requestID string) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, "bmi.calculate", trace.WithAttributes(
		SafeAttributes(map[string]interface{}{"request_id": requestID})...,
	))
}

// RecordRequestMetrics emits counters/histograms with safe labels. category
// is empty when the request never reached classification.
func (p *Provider) RecordRequestMetrics(ctx context.Context, outcome, category string, durMs float64) {
	if p == nil || p.requestsCounter == nil {
		return
	}
	attrs := SafeAttributes(map[string]interface{}{
		"bmicalc.outcome":  outcome,
		"bmicalc.category": category,
	})
	p.requestsCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.requestDuration.Record(ctx, durMs, metric.WithAttributes(attrs...))
}
