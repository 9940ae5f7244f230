package tdworkflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	jsonContentType    = "application/json"
	archiveContentType = "application/gzip"
)

// transport is a thin HTTP wrapper for workflow API communication.
type transport struct {
	apiBase   string
	apikey    string
	userAgent string
	headers   map[string]string
	logger    *slog.Logger
	send      RequestFunc
}

func newTransport(apiBase, apikey string, cfg clientConfig) *transport {
	return &transport{
		apiBase:   apiBase,
		apikey:    apikey,
		userAgent: cfg.userAgent,
		headers:   cfg.headers,
		logger:    cfg.logger,
		send:      cfg.middleware.then(cfg.httpClient.Do),
	}
}

// roundTrip sends one request and returns the response status and body.
// Any status outside 2xx is converted into *HTTPError.
func (t *transport) roundTrip(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) (int, []byte, error) {
	endpoint := t.apiBase + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("tdworkflow: create request: %w", err)
	}

	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", "TD1 "+t.apikey)
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", jsonContentType)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := t.send(req)
	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelWarn, "request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return 0, nil, fmt.Errorf("tdworkflow: request failed: %w", err)
	}
	if resp == nil {
		return 0, nil, fmt.Errorf("tdworkflow: %s %s: middleware returned no response", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("tdworkflow: read response: %w", err)
	}

	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := parseErrorResponse(respBody, resp.StatusCode)
		httpErr.Method = method
		httpErr.Path = path
		attrs = append(attrs, slog.String("error", httpErr.Message))
		t.logger.LogAttrs(ctx, slog.LevelWarn, "request returned error status", attrs...)
		return resp.StatusCode, respBody, httpErr
	}
	t.logger.LogAttrs(ctx, slog.LevelDebug, "request completed", attrs...)
	return resp.StatusCode, respBody, nil
}

// do executes a JSON request and decodes the JSON response into result.
func (t *transport) do(ctx context.Context, method, path string, query url.Values, body any, result any) (int, error) {
	var (
		bodyReader  io.Reader
		contentType string
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("tdworkflow: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = jsonContentType
	}

	status, respBody, err := t.roundTrip(ctx, method, path, query, contentType, bodyReader)
	if err != nil {
		return status, err
	}
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := decodeRecord("response", respBody, result); err != nil {
			return status, err
		}
	}
	return status, nil
}

// get performs an HTTP GET request.
func (t *transport) get(ctx context.Context, path string, query url.Values, result any) error {
	_, err := t.do(ctx, http.MethodGet, path, query, nil, result)
	return err
}

// post performs an HTTP POST request.
func (t *transport) post(ctx context.Context, path string, body any, result any) error {
	_, err := t.do(ctx, http.MethodPost, path, nil, body, result)
	return err
}

// put performs an HTTP PUT request.
func (t *transport) put(ctx context.Context, path string, body any, result any) error {
	_, err := t.do(ctx, http.MethodPut, path, nil, body, result)
	return err
}

// delete performs an HTTP DELETE request. It reports true exactly when the
// server answered 2xx; every other status is an *HTTPError.
func (t *transport) delete(ctx context.Context, path string) (bool, error) {
	if _, err := t.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// getRaw performs an HTTP GET request and returns the undecoded body.
func (t *transport) getRaw(ctx context.Context, path string) ([]byte, error) {
	_, body, err := t.roundTrip(ctx, http.MethodGet, path, nil, "", nil)
	return body, err
}

// putArchive uploads a gzip-compressed archive and decodes the JSON response.
func (t *transport) putArchive(ctx context.Context, path string, query url.Values, archive io.Reader, result any) error {
	_, respBody, err := t.roundTrip(ctx, http.MethodPut, path, query, archiveContentType, archive)
	if err != nil {
		return err
	}
	return decodeRecord("response", respBody, result)
}

// parseErrorResponse parses an error response body into an *HTTPError.
// The service answers with {"message": "...", "status": 404}.
func parseErrorResponse(body []byte, statusCode int) *HTTPError {
	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		return &HTTPError{
			StatusCode: statusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return &HTTPError{
		StatusCode: statusCode,
		Message:    errResp.Message,
	}
}

// discardHandler is a slog.Handler that drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
