package middleware

import (
	"log/slog"
	"net/http"
	"time"

	tdworkflow "github.com/tdworkflow/tdworkflow-go"
)

// Logging returns middleware that logs API requests using the provided
// [slog.Logger]. Each request produces two log entries: one when it is sent
// (DEBUG level) and one when it finishes (INFO on a 2xx/3xx status, ERROR
// on a transport failure or a 4xx/5xx status).
//
// Log attributes include http.method, http.path, http.status and
// duration_ms (on completion).
func Logging(logger *slog.Logger) tdworkflow.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(req *http.Request, next tdworkflow.RequestFunc) (*http.Response, error) {
		ctx := req.Context()
		attrs := []slog.Attr{
			slog.String("http.method", req.Method),
			slog.String("http.path", req.URL.Path),
		}

		logger.LogAttrs(ctx, slog.LevelDebug, "request started", attrs...)

		start := time.Now()
		resp, err := next(req)
		duration := time.Since(start)

		attrs = append(attrs, slog.Float64("duration_ms", float64(duration.Microseconds())/1000.0))

		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
		case resp.StatusCode >= 400:
			attrs = append(attrs, slog.Int("http.status", resp.StatusCode))
			logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
		default:
			attrs = append(attrs, slog.Int("http.status", resp.StatusCode))
			logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
		}

		return resp, err
	}
}
