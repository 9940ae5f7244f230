// Package middleware provides ready-made request middleware for the
// workflow client. Each constructor returns a [tdworkflow.MiddlewareFunc]
// to install with [tdworkflow.WithNamedMiddleware]:
//
//	client, err := tdworkflow.NewClient(apikey,
//	    tdworkflow.WithNamedMiddleware("recovery", middleware.Recovery(logger)),
//	    tdworkflow.WithNamedMiddleware("logging", middleware.Logging(logger)),
//	    tdworkflow.WithNamedMiddleware("metrics", middleware.Metrics(recorder)),
//	)
//
// [Logging] writes one slog entry when a request starts and one when it
// ends, with method, path, status and duration.
//
// [Recovery] turns a panic in later middleware or in a custom
// http.RoundTripper into an error returned from the call.
//
// [Metrics] reports request outcomes to a [MetricsRecorder], the hook for
// Prometheus, StatsD or any other backend. OpenTelemetry has its own
// module, github.com/tdworkflow/tdworkflow-go/middleware/otel.
package middleware
