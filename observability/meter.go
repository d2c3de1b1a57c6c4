package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ClientMetrics holds the instruments recorded for every executed request.
type ClientMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	errorTotal      metric.Int64Counter
}

// NewClientMetrics creates metric instruments on the given meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requestTotal, err := meter.Int64Counter("http.client.requests",
		metric.WithDescription("Total number of executed requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.client.requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of executed requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.client.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("http.client.active_requests",
		metric.WithDescription("Number of requests currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.client.active_requests gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("http.client.errors",
		metric.WithDescription("Failed executions by response status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.client.errors counter: %w", err)
	}

	return &ClientMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		errorTotal:      errorTotal,
	}, nil
}

// RecordRequestStart increments the active request count.
func (m *ClientMetrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the finished execution.
func (m *ClientMetrics) RecordRequestEnd(ctx context.Context, method, host, status string, statusCode int, duration time.Duration) {
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("host", host),
		attribute.String("status", status),
		attribute.Int("status_code", statusCode),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("host", host),
	))
}

// RecordError records a failed execution by response status.
func (m *ClientMetrics) RecordError(ctx context.Context, status, host string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("host", host),
	))
}
