package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Config struct {
	Service       string
	Environment   string
	CollectorAddr string
}

var globalTelemetry = NewNull()

func Global() Telemetry {
	return globalTelemetry
}

func SetGlobal(t Telemetry) {
	globalTelemetry = t
}

type Telemetry struct {
	trace         trace.Tracer
	traceProvider trace.TracerProvider
}

func NewNull() Telemetry {
	return Telemetry{
		trace:         noop.NewTracerProvider().Tracer("noop"),
		traceProvider: noop.NewTracerProvider(),
	}
}

// New installs an OTLP/gRPC trace pipeline as the global tracer. With an empty
// collector address it keeps the noop tracer and returns a no-op shutdown.
func New(ctx context.Context, cfg Config) (tel Telemetry, shutdown func(context.Context) error, err error) {
	if cfg.CollectorAddr == "" {
		return Global(), func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(cfg.CollectorAddr),
		otlptracegrpc.WithInsecure(),
	))
	if err != nil {
		return Telemetry{}, nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.Service),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return Telemetry{}, nil, errors.Join(fmt.Errorf("creating resource: %w", err), exporter.Shutdown(ctx))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tel = FromProvider(tp, cfg.Service)
	SetGlobal(tel)

	return tel, tp.Shutdown, nil
}

// FromProvider wraps an existing trace provider.
func FromProvider(tp trace.TracerProvider, name string) Telemetry {
	return Telemetry{
		trace:         tp.Tracer(name),
		traceProvider: tp,
	}
}

func (t Telemetry) T() trace.Tracer {
	return t.trace
}

func (t Telemetry) TraceProvider() trace.TracerProvider {
	return t.traceProvider
}
