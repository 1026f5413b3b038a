package tracer

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerAppName = "mailmerge"

func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(tracerAppName).Start(ctx, spanName, opts...)
}

// EndSpan records err on the span (if any) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// InitTraceProvider installs a global provider exporting to exp.
// The returned function flushes and stops the provider.
func InitTraceProvider(exp sdktrace.SpanExporter, version string) func(ctx context.Context) error {
	tp := sdktrace.NewTracerProvider(
		// runs are short and sequential, export each span as it ends
		sdktrace.WithSyncer(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", tracerAppName),
			attribute.String("service.version", version),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// InitStdout exports spans as pretty printed JSON to w.
func InitStdout(w io.Writer, version string) (func(ctx context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("cannot setup stdout trace exporter: %w", err)
	}

	return InitTraceProvider(exp, version), nil
}
