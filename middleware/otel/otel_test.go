package otel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tdworkflow "github.com/tdworkflow/tdworkflow-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newServer(t *testing.T, status int, body string, seen *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.Header.Clone()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, mw ...tdworkflow.MiddlewareFunc) *tdworkflow.Client {
	t.Helper()
	opts := []tdworkflow.ClientOption{tdworkflow.WithEndpoint(srv.URL)}
	for _, m := range mw {
		opts = append(opts, tdworkflow.WithMiddleware(m))
	}
	client, err := tdworkflow.NewClient("APIKEY", opts...)
	require.NoError(t, err)
	return client
}

func TestTracing_Success(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	var seen http.Header
	srv := newServer(t, http.StatusOK, `{"projects":[]}`, &seen)
	client := newClient(t, srv, Tracing(
		WithTracerProvider(tp),
		WithPropagators(propagation.TraceContext{}),
	))

	_, err := client.Projects(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "tdworkflow GET", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertAttr(t, span.Attributes, "http.request.method", "GET")
	assertAttr(t, span.Attributes, "url.path", "/api/projects")
	assertIntAttr(t, span.Attributes, "http.response.status_code", 200)

	assert.NotEmpty(t, seen.Get("traceparent"), "trace context should be propagated")
	assert.Contains(t, seen.Get("traceparent"), span.SpanContext.TraceID().String())
}

func TestTracing_ErrorStatus(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	srv := newServer(t, http.StatusNotFound, `{"message":"Resource does not exist: project id=9","status":404}`, nil)
	client := newClient(t, srv, Tracing(WithTracerProvider(tp)))

	_, err := client.Project(context.Background(), 9)
	require.ErrorIs(t, err, tdworkflow.ErrNotFound)

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assertIntAttr(t, spans[0].Attributes, "http.response.status_code", 404)
}

func TestTracing_TransportError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	srv := newServer(t, http.StatusOK, `{}`, nil)
	client := newClient(t, srv, Tracing(WithTracerProvider(tp)))
	srv.Close()

	_, err := client.Workflows(context.Background(), tdworkflow.WorkflowsOptions{})
	require.Error(t, err)

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events, "expected error event to be recorded")
}

func TestMetrics_Success(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	srv := newServer(t, http.StatusOK, `{"schedules":[]}`, nil)
	client := newClient(t, srv, Metrics(WithMeterProvider(mp)))

	_, err := client.Schedules(context.Background(), 0)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	metrics := flattenMetrics(rm)
	assert.Contains(t, metrics, "tdworkflow.request.started")
	assert.Contains(t, metrics, "tdworkflow.request.completed")
	assert.Contains(t, metrics, "tdworkflow.request.duration")
}

func TestMetrics_Error(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	srv := newServer(t, http.StatusInternalServerError, `{"message":"boom","status":500}`, nil)
	client := newClient(t, srv, Metrics(WithMeterProvider(mp)))

	_, err := client.Sessions(context.Background(), tdworkflow.ListOptions{})
	require.ErrorIs(t, err, tdworkflow.ErrServer)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	metrics := flattenMetrics(rm)
	assert.Contains(t, metrics, "tdworkflow.request.started")
	assert.Contains(t, metrics, "tdworkflow.request.failed")
	assert.Contains(t, metrics, "tdworkflow.request.duration")
}

func TestDefaultProviders(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"workflows":[]}`, nil)
	client := newClient(t, srv, Tracing(), Metrics())

	_, err := client.Workflows(context.Background(), tdworkflow.WorkflowsOptions{})
	require.NoError(t, err)
}

// --- helpers ---

func assertAttr(t *testing.T, attrs []attribute.KeyValue, key, expected string) {
	t.Helper()
	for _, a := range attrs {
		if string(a.Key) == key {
			assert.Equal(t, expected, a.Value.AsString(), "attr %s", key)
			return
		}
	}
	t.Errorf("attribute %q not found", key)
}

func assertIntAttr(t *testing.T, attrs []attribute.KeyValue, key string, expected int64) {
	t.Helper()
	for _, a := range attrs {
		if string(a.Key) == key {
			assert.Equal(t, expected, a.Value.AsInt64(), "attr %s", key)
			return
		}
	}
	t.Errorf("attribute %q not found", key)
}

func flattenMetrics(rm metricdata.ResourceMetrics) map[string]metricdata.Metrics {
	result := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			result[m.Name] = m
		}
	}
	return result
}
