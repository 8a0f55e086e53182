// Package observability provides tracing helpers for the write path
package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ajitpratap0/fluss-go"

// Tracer returns the tracer of the current global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

var spanDuration = sync.OnceValue(func() metric.Float64Histogram {
	h, err := otel.Meter(instrumentationName).Float64Histogram(
		"fluss.span.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of traced write path operations"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return h
})

// Span represents a tracing span with batched attributes
type Span struct {
	span       trace.Span
	name       string
	startTime  time.Time
	attributes []attribute.KeyValue
}

// NewSpan starts a span on the global tracer
func NewSpan(ctx context.Context, operationName string) (context.Context, *Span) {
	ctx, span := Tracer().Start(ctx, operationName)

	return ctx, &Span{
		span:      span,
		name:      operationName,
		startTime: time.Now(),
	}
}

// SetAttribute adds an attribute to the span; attributes are flushed on End
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int32:
		attr = attribute.Int(key, int(v))
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	case fmt.Stringer:
		attr = attribute.String(key, v.String())
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// AddEvent adds an event to the span
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordResult marks the span as failed when err is non-nil
func (s *Span) RecordResult(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// SpanContext exposes the underlying span context
func (s *Span) SpanContext() trace.SpanContext {
	return s.span.SpanContext()
}

// End flushes attributes, records the duration and ends the span
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}

	if h := spanDuration(); h != nil {
		h.Record(context.Background(), time.Since(s.startTime).Seconds(),
			metric.WithAttributes(attribute.String("operation", s.name)))
	}

	s.span.End()
}

// Trace runs fn inside a span named operation and records its result
func Trace(ctx context.Context, operation string, fn func(ctx context.Context, span *Span) error) error {
	ctx, span := NewSpan(ctx, operation)
	defer span.End()

	err := fn(ctx, span)
	span.RecordResult(err)
	return err
}

// InjectContext injects tracing context into headers
func InjectContext(ctx context.Context, headers map[string]string) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))
}

// ExtractContext extracts tracing context from headers
func ExtractContext(ctx context.Context, headers map[string]string) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))
}
