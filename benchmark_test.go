package tdworkflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- Record decoding benchmarks ---

func BenchmarkProjectUnmarshalJSON(b *testing.B) {
	data := []byte(projectsFixture)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var resp struct {
			Projects []Project `json:"projects"`
		}
		_ = json.Unmarshal(data, &resp)
	}
}

func BenchmarkWorkflowUnmarshalJSON(b *testing.B) {
	data := []byte(workflowsFixture)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var resp struct {
			Workflows []Workflow `json:"workflows"`
		}
		_ = json.Unmarshal(data, &resp)
	}
}

func BenchmarkSessionUnmarshalJSON(b *testing.B) {
	data := []byte(sessionsFixture)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var resp struct {
			Sessions []Session `json:"sessions"`
		}
		_ = json.Unmarshal(data, &resp)
	}
}

func BenchmarkAttemptUnmarshalJSON(b *testing.B) {
	data := []byte(attemptsFixture)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var resp struct {
			Attempts []Attempt `json:"attempts"`
		}
		_ = json.Unmarshal(data, &resp)
	}
}

// --- Middleware chain benchmarks ---

func BenchmarkMiddlewareChain_Direct(b *testing.B) {
	benchMiddlewareChain(b, 0)
}

func BenchmarkMiddlewareChain_1(b *testing.B) {
	benchMiddlewareChain(b, 1)
}

func BenchmarkMiddlewareChain_5(b *testing.B) {
	benchMiddlewareChain(b, 5)
}

func BenchmarkMiddlewareChain_10(b *testing.B) {
	benchMiddlewareChain(b, 10)
}

func benchMiddlewareChain(b *testing.B, depth int) {
	b.Helper()
	chain := newMiddlewareChain()
	for i := 0; i < depth; i++ {
		chain.Add("", func(req *http.Request, next RequestFunc) (*http.Response, error) {
			return next(req)
		})
	}
	resp := &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}
	send := chain.then(func(*http.Request) (*http.Response, error) { return resp, nil })
	req := httptest.NewRequest(http.MethodGet, "https://api-workflow.treasuredata.com/api/projects", nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = send(req)
	}
}

// --- Validation benchmarks ---

func BenchmarkValidateName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = validateName("SetSecrets", "key", "td.apikey")
	}
}
