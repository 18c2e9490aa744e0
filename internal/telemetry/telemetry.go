// Package telemetry wires the span exporters behind core.Tracer.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"parkcore/internal/core"
)

// Modes accepted by Setup.
const (
	ModeOff    = "off"
	ModeStdout = "stdout"
	ModeJSON   = "json"
)

// Config selects the exporter.
type Config struct {
	Mode        string
	ServiceName string
	// Output receives exported spans; nil means stdout.
	Output io.Writer
}

// Setup returns the tracer for cfg and a shutdown func that flushes pending
// spans. ModeOff returns a nil tracer, which the service treats as no-op.
func Setup(_ context.Context, cfg Config) (core.Tracer, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	name := cfg.ServiceName
	if name == "" {
		name = "parkcore"
	}

	switch cfg.Mode {
	case ModeOff, "":
		return nil, noop, nil
	case ModeJSON:
		return core.NewJSONTracer(out), noop, nil
	case ModeStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, noop, fmt.Errorf("stdout exporter: %w", err)
		}
		res := resource.NewSchemaless(attribute.String("service.name", name))
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		return core.NewOTelTracer(tp), tp.Shutdown, nil
	default:
		return nil, noop, fmt.Errorf("unknown tracing mode %q", cfg.Mode)
	}
}
