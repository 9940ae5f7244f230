package otel

import (
	"fmt"
	"net/http"
	"time"

	tdworkflow "github.com/tdworkflow/tdworkflow-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/tdworkflow/tdworkflow-go/middleware/otel"

// --- Options ---

// Option configures the OTel middleware.
type Option func(*config)

type config struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	propagators    propagation.TextMapPropagator
}

// WithTracerProvider sets a custom TracerProvider. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tracerProvider = tp }
}

// WithMeterProvider sets a custom MeterProvider. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.meterProvider = mp }
}

// WithPropagators sets the propagator used to inject the trace context into
// request headers. Defaults to the global propagator.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(c *config) { c.propagators = p }
}

func resolve(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}
	if cfg.propagators == nil {
		cfg.propagators = otel.GetTextMapPropagator()
	}
	return cfg
}

// --- Tracing Middleware ---

// Tracing returns middleware that creates a client span for every API
// request and injects its context into the outgoing headers.
//
// Span attributes include:
//   - http.request.method
//   - url.path
//   - server.address
//   - http.response.status_code (when a response arrives)
//
// Transport failures and 4xx/5xx statuses set the span status to Error.
func Tracing(opts ...Option) tdworkflow.MiddlewareFunc {
	cfg := resolve(opts)
	tracer := cfg.tracerProvider.Tracer(instrumentationName)

	return func(req *http.Request, next tdworkflow.RequestFunc) (*http.Response, error) {
		ctx, span := tracer.Start(req.Context(),
			fmt.Sprintf("tdworkflow %s", req.Method),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(requestAttributes(req)...),
		)
		defer span.End()

		req = req.Clone(ctx)
		cfg.propagators.Inject(ctx, propagation.HeaderCarrier(req.Header))

		resp, err := next(req)

		switch {
		case err != nil:
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		case resp.StatusCode >= 400:
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		default:
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			span.SetStatus(codes.Ok, "")
		}

		return resp, err
	}
}

// --- Metrics Middleware ---

// Metrics returns middleware that records API request metrics via OTel.
//
// Recorded instruments:
//   - tdworkflow.request.started (counter): incremented when a request is sent
//   - tdworkflow.request.completed (counter): incremented on 2xx/3xx
//   - tdworkflow.request.failed (counter): incremented on errors and 4xx/5xx
//   - tdworkflow.request.duration (histogram, milliseconds): request latency
func Metrics(opts ...Option) tdworkflow.MiddlewareFunc {
	cfg := resolve(opts)
	meter := cfg.meterProvider.Meter(instrumentationName)

	started, _ := meter.Int64Counter("tdworkflow.request.started",
		metric.WithDescription("Number of API requests sent"),
	)
	completed, _ := meter.Int64Counter("tdworkflow.request.completed",
		metric.WithDescription("Number of API requests that succeeded"),
	)
	failed, _ := meter.Int64Counter("tdworkflow.request.failed",
		metric.WithDescription("Number of API requests that failed"),
	)
	duration, _ := meter.Float64Histogram("tdworkflow.request.duration",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return func(req *http.Request, next tdworkflow.RequestFunc) (*http.Response, error) {
		ctx := req.Context()
		attrs := metric.WithAttributes(
			attribute.String("http.request.method", req.Method),
		)

		started.Add(ctx, 1, attrs)

		start := time.Now()
		resp, err := next(req)
		durationMS := float64(time.Since(start).Microseconds()) / 1000.0

		duration.Record(ctx, durationMS, attrs)

		if err != nil || resp.StatusCode >= 400 {
			failed.Add(ctx, 1, attrs)
		} else {
			completed.Add(ctx, 1, attrs)
		}

		return resp, err
	}
}

// requestAttributes returns the standard OTel attributes for a request.
func requestAttributes(req *http.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.URL.Path),
		attribute.String("server.address", req.URL.Hostname()),
	}
}
