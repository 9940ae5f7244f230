package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	tdworkflow "github.com/tdworkflow/tdworkflow-go"
)

// Recovery returns middleware that recovers from panics in downstream
// middleware or a custom http.RoundTripper and converts them to errors.
// The failed call then returns an error instead of crashing the caller.
//
// If a logger is provided, the panic value and stack trace are logged
// at ERROR level. Pass nil to disable panic logging.
func Recovery(logger *slog.Logger) tdworkflow.MiddlewareFunc {
	return func(req *http.Request, next tdworkflow.RequestFunc) (resp *http.Response, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)

				if logger != nil {
					logger.LogAttrs(req.Context(), slog.LevelError, "request panicked",
						slog.String("http.method", req.Method),
						slog.String("http.path", req.URL.Path),
						slog.Any("panic", r),
						slog.String("stack", string(buf[:n])),
					)
				}

				resp = nil
				retErr = fmt.Errorf("panic in %s %s: %v", req.Method, req.URL.Path, r)
			}
		}()
		return next(req)
	}
}
