package logger

import (
	"context"
)

type ctxKey struct{}

// Tracer is the data propagated through the context and attached to each log line.
type Tracer struct {
	RunID   string `json:"run_id,omitempty"`
	Command string `json:"command,omitempty"`
	Records string `json:"records,omitempty"`
}

func Inject(ctx context.Context, tracer Tracer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, ctxKey{}, tracer)
}

func Extract(ctx context.Context) (Tracer, bool) {
	if ctx == nil {
		return Tracer{}, false
	}

	tracer, ok := ctx.Value(ctxKey{}).(Tracer)
	return tracer, ok
}
