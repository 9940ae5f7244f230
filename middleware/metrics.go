package middleware

import (
	"net/http"
	"time"

	tdworkflow "github.com/tdworkflow/tdworkflow-go"
)

// MetricsRecorder is the interface for recording API request metrics.
// Implement this interface to connect any metrics backend (Prometheus,
// OpenTelemetry, StatsD, etc.).
type MetricsRecorder interface {
	// RequestStarted is called when a request is sent.
	RequestStarted(method, path string)

	// RequestCompleted is called when a request returns a 2xx/3xx status.
	RequestCompleted(method, path string, status int, duration time.Duration)

	// RequestFailed is called on transport failures (status 0) and on
	// 4xx/5xx statuses.
	RequestFailed(method, path string, status int, duration time.Duration)
}

// Metrics returns middleware that records request metrics via the
// provided [MetricsRecorder]. It tracks request starts, completions,
// failures and latency.
func Metrics(recorder MetricsRecorder) tdworkflow.MiddlewareFunc {
	return func(req *http.Request, next tdworkflow.RequestFunc) (*http.Response, error) {
		path := req.URL.Path
		recorder.RequestStarted(req.Method, path)

		start := time.Now()
		resp, err := next(req)
		duration := time.Since(start)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		if err != nil || status >= 400 {
			recorder.RequestFailed(req.Method, path, status, duration)
		} else {
			recorder.RequestCompleted(req.Method, path, status, duration)
		}

		return resp, err
	}
}
