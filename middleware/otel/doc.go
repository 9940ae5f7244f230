// Package otel provides OpenTelemetry middleware for the workflow client.
//
// This package integrates with the OpenTelemetry SDK to provide distributed
// tracing and metrics for API calls. It creates a client span per request,
// propagates the trace context in the request headers, and records metrics
// via the OTel metrics API.
//
// # Tracing
//
// The [Tracing] middleware creates a span for every API request with the
// HTTP method, path, server address and response status:
//
//	client, err := tdworkflow.NewClient(apikey,
//	    tdworkflow.WithNamedMiddleware("tracing", otel.Tracing(
//	        otel.WithTracerProvider(tp),
//	    )),
//	)
//
// # Metrics
//
// The [Metrics] middleware records request counters and a duration
// histogram via the OTel metrics API:
//
//	tdworkflow.WithNamedMiddleware("metrics", otel.Metrics(
//	    otel.WithMeterProvider(mp),
//	))
package otel
