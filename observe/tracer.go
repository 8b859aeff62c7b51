package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta identifies a call site for telemetry purposes: one Mono
// subscription, one Flux subscription, one breaker-guarded invocation, one
// saga step.
type CallMeta struct {
	ID        string   // Fully qualified call ID (component.name or just name)
	Component string   // Owning component (mono, flux, breaker, saga, lb); may be empty
	Name      string   // Call name (required)
	Version   string   // Schema/contract version (optional)
	Tags      []string // Free-form tags for discovery (optional)
	Category  string   // Call category (optional)
}

// SpanName returns the deterministic span name for this call.
// Format: stream.<component>.<name> or stream.<name>
func (m CallMeta) SpanName() string {
	if m.Component != "" {
		return "stream." + m.Component + "." + m.Name
	}
	return "stream." + m.Name
}

// CallID returns the fully qualified call identifier.
// If ID field is set, returns it. Otherwise constructs from component and name.
func (m CallMeta) CallID() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Component != "" {
		return m.Component + "." + m.Name
	}
	return m.Name
}

// Validate reports whether the metadata is usable for telemetry. Name is
// the only required field.
func (m CallMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingCallName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with call-site span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan derives the span from ctx and returns the child context; it reports no error and does not check ctx for cancellation.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a call site.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with call metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	// Build attributes
	attrs := []attribute.KeyValue{
		attribute.String("call.id", meta.CallID()),
		attribute.String("call.name", meta.Name),
		attribute.Bool("call.error", false), // Will be updated in EndSpan if error
	}

	// Add component if present
	if meta.Component != "" {
		attrs = append(attrs, attribute.String("call.component", meta.Component))
	}

	// Add optional attributes if present
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("call.version", meta.Version))
	}
	if meta.Category != "" {
		attrs = append(attrs, attribute.String("call.category", meta.Category))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("call.tags", meta.Tags))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("call.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
