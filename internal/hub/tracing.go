package hub

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var tracer = noop.NewTracerProvider().Tracer("nunitius/hub")

// SetupTracing installs a stdout-exporting tracer provider and returns a
// shutdown function. Spans are emitted around login, message ingress, and
// broadcast fan-out for local debugging; there is no network collector in
// scope, so stdouttrace is the whole pipeline.
func SetupTracing(ctx context.Context) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("hub: creating trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(trace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	tracer = tp.Tracer("nunitius/hub")

	return tp.Shutdown, nil
}
