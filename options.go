package tdworkflow

import (
	"log/slog"
	"net/http"
)

// clientConfig holds the resolved configuration for a Client.
type clientConfig struct {
	site       string
	endpoint   string
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
	logger     *slog.Logger
	middleware *middlewareChain
}

// ClientOption configures the workflow client.
type ClientOption func(*clientConfig)

// WithSite selects the Treasure Data region by its shorthand:
// "us" (default), "jp", "eu01", "ap02" or "ap03".
func WithSite(site string) ClientOption {
	return func(c *clientConfig) {
		c.site = site
	}
}

// WithEndpoint overrides the API host. A bare host such as
// "digdag.example.com" is reached over HTTPS; a value that carries a scheme,
// such as "http://127.0.0.1:65432", is used as given. The "/api/" prefix is
// appended in both cases.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom net/http.Client for the workflow client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithUserAgent replaces the default "tdworkflow/<version>" User-Agent.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = userAgent
	}
}

// WithHeader sets a custom header on all requests. Authorization and
// User-Agent cannot be overridden this way.
func WithHeader(key, value string) ClientOption {
	return func(c *clientConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// WithLogger sets a structured logger for request-level events. Requests
// are logged at DEBUG and HTTP failures at WARN. Pass nil to disable
// logging (the default).
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMiddleware appends request middleware to the client's chain.
// Middleware runs in the order it was added, outermost first.
func WithMiddleware(fn MiddlewareFunc) ClientOption {
	return WithNamedMiddleware("", fn)
}

// WithNamedMiddleware appends named request middleware. Adding a second
// middleware under the same non-empty name replaces the first in place.
func WithNamedMiddleware(name string, fn MiddlewareFunc) ClientOption {
	return func(c *clientConfig) {
		if c.middleware == nil {
			c.middleware = newMiddlewareChain()
		}
		c.middleware.Add(name, fn)
	}
}

func resolveClientConfig(opts []ClientOption) clientConfig {
	cfg := clientConfig{
		site: DefaultSite,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = http.DefaultClient
	}
	if cfg.userAgent == "" {
		cfg.userAgent = defaultUserAgent
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(discardHandler{})
	}
	if cfg.middleware == nil {
		cfg.middleware = newMiddlewareChain()
	}
	return cfg
}
