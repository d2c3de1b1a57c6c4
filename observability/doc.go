// Package observability provides OpenTelemetry tracing and metrics for
// outgoing HTTP requests.
//
// The package never installs providers itself. Applications configure the
// global providers (or pass explicit ones) and restkit records through them:
//
//	tel, err := observability.NewTelemetry(tp, mp)
//	ctx, op := tel.Start(ctx, "GET", "api.example.com")
//	defer op.End(ctx, "completed", 200, nil)
//
// Span helpers work with whatever span is carried by the context:
//
//	observability.SetSpanAttribute(ctx, "http.request.resend_count", 1)
//	observability.SetSpanError(ctx, err)
package observability
