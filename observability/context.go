package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles the tracer and metric instruments a client records to.
type Telemetry struct {
	tracer  trace.Tracer
	metrics *ClientMetrics
}

// NewTelemetry creates telemetry from explicit providers. Nil providers fall
// back to the global ones.
func NewTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*Telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	metrics, err := NewClientMetrics(mp.Meter(InstrumentationName))
	if err != nil {
		return nil, err
	}
	return &Telemetry{tracer: tp.Tracer(InstrumentationName), metrics: metrics}, nil
}

// Operation tracks one request execution from start to finish.
type Operation struct {
	Method    string
	Host      string
	StartTime time.Time

	span    trace.Span
	metrics *ClientMetrics
}

// Start opens a client span and records the request start metric.
func (t *Telemetry) Start(ctx context.Context, method, host string) (context.Context, *Operation) {
	ctx, span := t.tracer.Start(ctx, SpanExecute, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String(AttrHTTPMethod, method))
	if host != "" {
		span.SetAttributes(attribute.String(AttrServerAddress, host))
	}
	t.metrics.RecordRequestStart(ctx)
	return ctx, &Operation{
		Method:    method,
		Host:      host,
		StartTime: time.Now(),
		span:      span,
		metrics:   t.metrics,
	}
}

// Span returns the span backing the operation.
func (o *Operation) Span() trace.Span {
	return o.span
}

// SetURL records the fully built request URL.
func (o *Operation) SetURL(full, host string) {
	o.span.SetAttributes(attribute.String(AttrURLFull, full))
	if host != "" && o.Host == "" {
		o.Host = host
		o.span.SetAttributes(attribute.String(AttrServerAddress, host))
	}
}

// End finishes the span and records request-end metrics. A non-nil err
// marks the span as failed and counts an error.
func (o *Operation) End(ctx context.Context, status string, statusCode int, err error) {
	duration := time.Since(o.StartTime)

	if err != nil {
		o.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	SetSpanError(trace.ContextWithSpan(ctx, o.span), err)

	o.span.SetAttributes(
		attribute.String(AttrResponseStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	if statusCode > 0 {
		o.span.SetAttributes(attribute.Int(AttrHTTPStatusCode, statusCode))
	}
	o.span.End()

	o.metrics.RecordRequestEnd(ctx, o.Method, o.Host, status, statusCode, duration)
	if err != nil {
		o.metrics.RecordError(ctx, status, o.Host)
	}
}

// Duration returns the elapsed time since operation start.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.StartTime)
}
