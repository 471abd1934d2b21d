package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/elevation/state"
)

const defaultTracerName = "elevation"

// TraceConfig configures the tracing observer.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "elevation").
	TracerName string

	// IncludeNoops also traces writes that changed nothing.
	IncludeNoops bool

	// Context is the parent context for every span.
	// Default: context.Background()
	Context context.Context
}

// TraceOption configures the tracing observer.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithNoops enables tracing of no-op writes.
func WithNoops(include bool) TraceOption {
	return func(c *TraceConfig) {
		c.IncludeNoops = include
	}
}

// WithParentContext sets the parent context for spans.
func WithParentContext(ctx context.Context) TraceOption {
	return func(c *TraceConfig) {
		c.Context = ctx
	}
}

// Tracer records store writes as OpenTelemetry spans. Each write becomes a
// span covering its duration; notifications are not traced.
//
// The tracer uses the global OpenTelemetry tracer provider.
type Tracer struct {
	config TraceConfig
	tracer trace.Tracer
}

var _ state.Observer = (*Tracer)(nil)

// NewTracer creates a tracing observer.
func NewTracer(opts ...TraceOption) *Tracer {
	config := TraceConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	return &Tracer{
		config: config,
		tracer: otel.Tracer(config.TracerName),
	}
}

// ObserveStore records one store event.
func (t *Tracer) ObserveStore(ev state.Event) {
	if t == nil {
		return
	}
	switch ev.Kind {
	case state.EventNotify:
		return
	case state.EventNoop:
		if !t.config.IncludeNoops {
			return
		}
	}

	end := time.Now()
	_, span := t.tracer.Start(
		t.config.Context,
		"elevation."+ev.Kind.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(eventAttributes(ev)...),
		trace.WithTimestamp(end.Add(-ev.Duration)),
	)
	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

func eventAttributes(ev state.Event) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("elevation.event", ev.Kind.String()),
		attribute.Int64("elevation.version", int64(ev.Version)),
		attribute.Bool("elevation.silent", ev.Silent),
	}
	if len(ev.Changed) > 0 {
		attrs = append(attrs,
			attribute.StringSlice("elevation.changed", ev.Changed),
			attribute.Int("elevation.changed_count", len(ev.Changed)),
		)
	}
	if ev.Kind == state.EventCommit {
		attrs = append(attrs, attribute.Int("elevation.subscribers", ev.Subscribers))
	}
	if ev.Err != nil {
		attrs = append(attrs, attribute.String("elevation.error", strings.TrimSpace(ev.Err.Error())))
	}
	return attrs
}
