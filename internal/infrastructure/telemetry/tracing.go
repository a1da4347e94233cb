// Package telemetry wires OpenTelemetry tracing, metrics and log export for
// the costing service and offers small helpers for business spans.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of business spans
const TracerName = "bakeops-backend"

// Span attribute keys used by the costing service
const (
	SpanAttrRecipeID       = "costing.recipe_id"
	SpanAttrProfile        = "costing.profile"
	SpanAttrCakeSize       = "costing.size"
	SpanAttrLayers         = "costing.layers"
	SpanAttrQuantity       = "costing.quantity"
	SpanAttrLineCount      = "costing.line_count"
	SpanAttrShortfallLines = "costing.shortfall_lines"
	SpanAttrTotalCost      = "costing.total_cost_to_bake"
	SpanAttrRequestID      = "request_id"
)

// SpanOption configures a span at start
type SpanOption func(*spanConfig)

type spanConfig struct {
	kind       trace.SpanKind
	attributes []attribute.KeyValue
}

// WithAttribute sets an attribute when the span starts
func WithAttribute(key string, value any) SpanOption {
	return func(c *spanConfig) {
		c.attributes = append(c.attributes, toAttribute(key, value))
	}
}

// WithSpanKind overrides the default internal span kind
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(c *spanConfig) {
		c.kind = kind
	}
}

// StartSpan starts a span on the global tracer provider.
// The caller must End the returned span.
//
//	ctx, span := telemetry.StartSpan(ctx, "catalog.load")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	cfg := &spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(cfg)
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(cfg.kind)}
	if len(cfg.attributes) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(cfg.attributes...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, startOpts...)
}

// StartServiceSpan starts a span named "{service}.{method}", e.g. "costing.estimate"
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, method), opts...)
}

// SetAttributes sets alternating key/value pairs on span.
// Pairs whose key is not a string are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	span.SetAttributes(pairs(keyValues)...)
}

// SetAttribute sets a single attribute on span
func SetAttribute(span trace.Span, key string, value any) {
	if span == nil {
		return
	}
	span.SetAttributes(toAttribute(key, value))
}

// AddEvent records a timestamped event with alternating key/value pairs
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(pairs(keyValues)...))
}

// RecordError records err on span and marks the span failed
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks span successful
func SetOK(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID of the span in ctx, or "" when there is none
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

func pairs(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
