// Package telemetry wires up OpenTelemetry tracing and metrics. Local
// development pretty-prints to stdout; deployments point the "otlp" exporter
// at a collector.
//
//	tp, err := telemetry.InitTracer(ctx, "customizer-engine", "otlp", endpoint)
//	defer tp.Shutdown(ctx)
//
//	mp, err := telemetry.InitMeter(ctx, "customizer-engine", "otlp", endpoint)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := telemetry.NewMetrics(mp)
//	metrics.ActionTotal.Add(ctx, 1, ...)
package telemetry

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// Supported exporter names, shared with config validation.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Shared attribute keys for metric labels.
var (
	AttrHTTPMethod  = attribute.Key("http.method")
	AttrHTTPStatus  = attribute.Key("http.status_code")
	AttrPeerService = attribute.Key("peer.service")
	AttrResult      = attribute.Key("result")
	AttrActionType  = attribute.Key("action.type")
	AttrActionPhase = attribute.Key("action.phase")
)

// Metrics bundles the instruments recorded by the HTTP layers and the action
// service. Action metrics are labeled with AttrActionType and AttrActionPhase
// ("execute" or "rollback").
type Metrics struct {
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter
	ClientRequestDuration metric.Float64Histogram
	ClientRequestTotal    metric.Int64Counter
	ActionDuration        metric.Float64Histogram
	ActionTotal           metric.Int64Counter
}

// InitTracer installs the global TracerProvider. ExporterOTLP ships spans to
// endpoint over OTLP/HTTP; ExporterStdout pretty-prints them. Shut the
// returned provider down on exit to flush batched spans.
func InitTracer(ctx context.Context, serviceName, exporter, endpoint string) (*sdktrace.TracerProvider, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	spanExporter, err := newSpanExporter(ctx, exporter, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// InitMeter installs the global MeterProvider, selecting the exporter the
// same way InitTracer does. Shut the returned provider down on exit.
func InitMeter(ctx context.Context, serviceName, exporter, endpoint string) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	metricExporter, err := newMetricExporter(ctx, exporter, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// NewMetrics registers every instrument on a meter scoped to the module
// path.
func NewMetrics(mp *sdkmetric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("github.com/printcraft/customizer-engine")

	var firstErr error
	histogram := func(name, desc, unit string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("creating %s: %w", name, err)
		}
		return h
	}
	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("creating %s: %w", name, err)
		}
		return c
	}

	m := &Metrics{
		ServerRequestDuration: histogram("http.server.request.duration", "Duration of incoming HTTP requests", "s"),
		ServerRequestTotal:    counter("http.server.request.total", "Total number of incoming HTTP requests", "{request}"),
		ClientRequestDuration: histogram("http.client.request.duration", "Duration of outgoing HTTP requests", "s"),
		ClientRequestTotal:    counter("http.client.request.total", "Total number of outgoing HTTP requests", "{request}"),
		ActionDuration:        histogram("engine.action.duration", "Duration of action executions and rollbacks", "s"),
		ActionTotal:           counter("engine.action.total", "Total number of action executions and rollbacks", "{action}"),
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newSpanExporter(ctx context.Context, exporter, endpoint string) (sdktrace.SpanExporter, error) {
	switch exporter {
	case ExporterOTLP:
		opts, err := otlpEndpointOpts(endpoint)
		if err != nil {
			return nil, err
		}
		traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.hostPort)}
		if opts.insecure {
			traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, traceOpts...)
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unsupported exporter %q", exporter)
	}
}

func newMetricExporter(ctx context.Context, exporter, endpoint string) (sdkmetric.Exporter, error) {
	switch exporter {
	case ExporterOTLP:
		opts, err := otlpEndpointOpts(endpoint)
		if err != nil {
			return nil, err
		}
		metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(opts.hostPort)}
		if opts.insecure {
			metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, metricOpts...)
	case ExporterStdout:
		return stdoutmetric.New()
	default:
		return nil, fmt.Errorf("unsupported exporter %q", exporter)
	}
}

type endpointOpts struct {
	hostPort string
	insecure bool
}

// otlpEndpointOpts resolves a collector URL into the host:port and TLS mode
// the OTLP option builders want.
func otlpEndpointOpts(endpoint string) (endpointOpts, error) {
	if endpoint == "" {
		return endpointOpts{}, fmt.Errorf("otlp exporter requires an endpoint")
	}
	return endpointOpts{
		hostPort: hostPort(endpoint),
		insecure: !isHTTPS(endpoint),
	}, nil
}

// hostPort strips the scheme from a collector URL; the OTLP options want
// bare host:port.
func hostPort(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

func isHTTPS(endpoint string) bool {
	u, err := url.Parse(endpoint)
	return err == nil && u.Scheme == "https"
}
