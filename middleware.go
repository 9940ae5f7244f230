package tdworkflow

import "net/http"

// RequestFunc sends a prepared API request and returns the raw response.
type RequestFunc func(*http.Request) (*http.Response, error)

// MiddlewareFunc wraps a RequestFunc with cross-cutting concerns such as
// logging, metrics or tracing. It follows the standard Go middleware
// pattern (onion model): call next to continue the chain.
//
// Example:
//
//	func timing(req *http.Request, next tdworkflow.RequestFunc) (*http.Response, error) {
//	    start := time.Now()
//	    resp, err := next(req)
//	    log.Printf("%s %s took %s", req.Method, req.URL.Path, time.Since(start))
//	    return resp, err
//	}
type MiddlewareFunc func(req *http.Request, next RequestFunc) (*http.Response, error)

// middlewareChain holds an ordered list of middleware.
type middlewareChain struct {
	middleware []namedMiddleware
}

// namedMiddleware associates a name with a middleware for identification.
type namedMiddleware struct {
	name string
	fn   MiddlewareFunc
}

func newMiddlewareChain() *middlewareChain {
	return &middlewareChain{}
}

// Add appends middleware to the end of the chain. A non-empty name that is
// already present is replaced in place.
func (c *middlewareChain) Add(name string, fn MiddlewareFunc) {
	if name != "" {
		for i, m := range c.middleware {
			if m.name == name {
				c.middleware[i].fn = fn
				return
			}
		}
	}
	c.middleware = append(c.middleware, namedMiddleware{name: name, fn: fn})
}

// then builds a RequestFunc by wrapping send with the middleware chain.
func (c *middlewareChain) then(send RequestFunc) RequestFunc {
	// Build from inside out: the last middleware wraps send first.
	h := send
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw := c.middleware[i].fn
		next := h
		h = func(req *http.Request) (*http.Response, error) {
			return mw(req, next)
		}
	}
	return h
}
