package tdworkflow

import (
	"fmt"
	"net/url"
	"strings"
)

// Version is the library version reported in the User-Agent header.
const Version = "0.1.0"

// DefaultSite is the Treasure Data region used when no site is given.
const DefaultSite = "us"

const defaultUserAgent = "tdworkflow/" + Version

// siteEndpoints maps a site shorthand to its workflow API host.
var siteEndpoints = map[string]string{
	"us":   "api-workflow.treasuredata.com",
	"jp":   "api-workflow.treasuredata.co.jp",
	"eu01": "api-workflow.eu01.treasuredata.com",
	"ap02": "api-workflow.ap02.treasuredata.com",
	"ap03": "api-workflow.ap03.treasuredata.com",
}

// Client is a Treasure Workflow client that talks to the workflow REST API
// over HTTP. It exposes one method per API endpoint: projects, workflows,
// schedules, sessions, attempts, log files and secrets.
//
// A Client holds no mutable state after construction and is safe for
// concurrent use.
type Client struct {
	site      string
	endpoint  string
	apiBase   string
	transport *transport
}

// NewClient creates a new workflow client authenticated with apikey.
//
// Example:
//
//	client, err := tdworkflow.NewClient(os.Getenv("TD_API_KEY"),
//	    tdworkflow.WithSite("jp"),
//	)
func NewClient(apikey string, opts ...ClientOption) (*Client, error) {
	if apikey == "" {
		return nil, fmt.Errorf("tdworkflow: API key is required")
	}
	cfg := resolveClientConfig(opts)

	endpoint := cfg.endpoint
	if endpoint == "" {
		host, ok := siteEndpoints[cfg.site]
		if !ok {
			return nil, fmt.Errorf("tdworkflow: unknown site %q", cfg.site)
		}
		endpoint = host
	}
	apiBase, err := buildAPIBase(endpoint)
	if err != nil {
		return nil, err
	}

	return &Client{
		site:      cfg.site,
		endpoint:  endpoint,
		apiBase:   apiBase,
		transport: newTransport(apiBase, apikey, cfg),
	}, nil
}

// buildAPIBase turns a host or root URL into the "/api/" base URL.
func buildAPIBase(endpoint string) (string, error) {
	raw := strings.TrimRight(endpoint, "/")
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("tdworkflow: invalid endpoint %q", endpoint)
	}
	return strings.TrimRight(u.String(), "/") + "/api/", nil
}

// Site returns the site shorthand the client was configured with.
func (c *Client) Site() string { return c.site }

// Endpoint returns the API host (or root URL) the client talks to.
func (c *Client) Endpoint() string { return c.endpoint }

// APIBase returns the base URL every request path is resolved against,
// e.g. "https://api-workflow.treasuredata.com/api/".
func (c *Client) APIBase() string { return c.apiBase }
