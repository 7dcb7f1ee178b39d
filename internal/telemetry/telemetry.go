// Package telemetry wires OpenTelemetry tracing for the viewer.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Environment variables read by Setup.
const (
	EnvEndpoint = "FLOORVIEW_OTEL_ENDPOINT"
	EnvEnabled  = "FLOORVIEW_OTEL_ENABLED"
)

// Config selects the trace exporter. Endpoint and Enabled are overridden by
// the environment.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Setup initialises tracing for the given service.
//
// Tracing is opt-in: with no endpoint, or when disabled, Setup returns a
// no-op shutdown function and leaves the global provider alone.
func Setup(ctx context.Context, serviceName string, cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	enabled := cfg.Enabled
	if v, ok := os.LookupEnv(EnvEnabled); ok && v != "" {
		enabled = !strings.EqualFold(v, "false")
	}
	endpoint := cfg.Endpoint
	if v := os.Getenv(EnvEndpoint); v != "" {
		endpoint = v
		if _, ok := os.LookupEnv(EnvEnabled); !ok {
			enabled = true
		}
	}
	if !enabled || endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return noop, fmt.Errorf("creating trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
