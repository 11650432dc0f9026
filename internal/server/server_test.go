package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipecheck/internal/config"
	"github.com/matzehuels/pipecheck/pkg/cache"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/history"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

const validPipeline = `{
	"nodes": [
		{"id": "a", "type": "customInput", "position": {"x": 0, "y": 0}},
		{"id": "b", "type": "llm", "position": {"x": 200, "y": 0}},
		{"id": "c", "type": "customOutput", "position": {"x": 400, "y": 0}}
	],
	"edges": [
		{"id": "e1", "source": "a", "target": "b"},
		{"id": "e2", "source": "b", "target": "c"}
	]
}`

const cyclicPipeline = `{
	"nodes": [
		{"id": "a", "type": "llm", "position": {"x": 0, "y": 0}},
		{"id": "b", "type": "llm", "position": {"x": 200, "y": 0}}
	],
	"edges": [
		{"id": "e1", "source": "a", "target": "b"},
		{"id": "e2", "source": "b", "target": "a"}
	]
}`

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, history.NewNullStore(), logger)
	return New(cfg, runner, logger)
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["Ping"] != "Pong" {
		t.Errorf("body = %v, want Ping=Pong", body)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q, want status ok", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"version"`) {
		t.Errorf("body = %q, want a version field", rec.Body.String())
	}
}

func TestParsePipeline(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodPost, "/pipelines/parse", validPipeline)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var report pipeline.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.NumNodes != 3 || report.NumEdges != 2 || !report.IsDAG {
		t.Errorf("report = %+v, want 3 nodes, 2 edges, dag", report)
	}
}

func TestParsePipelineCyclic(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodPost, "/pipelines/parse", cyclicPipeline)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var report pipeline.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.IsDAG {
		t.Error("IsDAG = true for a cyclic pipeline")
	}
}

func TestParseReportFieldNames(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodPost, "/pipelines/parse", validPipeline)

	body := rec.Body.String()
	for _, field := range []string{`"num_nodes"`, `"num_edges"`, `"is_dag"`} {
		if !strings.Contains(body, field) {
			t.Errorf("body %q missing field %s", body, field)
		}
	}
}

func TestParseDuplicatesAndDanglingEdges(t *testing.T) {
	// Duplicate ids and edges into unknown nodes come straight from the
	// editor mid-drag. They count toward the totals but never break parsing.
	doc := `{
		"nodes": [
			{"id": "a", "type": "text", "position": {"x": 0, "y": 0}},
			{"id": "b", "type": "text", "position": {"x": 1, "y": 0}},
			{"id": "a", "type": "llm", "position": {"x": 2, "y": 0}}
		],
		"edges": [
			{"id": "e1", "source": "a", "target": "b"},
			{"id": "e2", "source": "b", "target": "ghost"}
		]
	}`
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodPost, "/pipelines/parse", doc)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var report pipeline.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.NumNodes != 3 || report.NumEdges != 2 || !report.IsDAG {
		t.Errorf("report = %+v, want 3 nodes, 2 edges, dag", report)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodPost, "/pipelines/parse", `{"nodes": [`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", body.Code)
	}
	if body.Detail == "" {
		t.Error("detail is empty")
	}
}

func TestParseInvalidPipeline(t *testing.T) {
	doc := `{
		"nodes": [{"id": "", "type": "text", "position": {"x": 0, "y": 0}}],
		"edges": []
	}`
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodPost, "/pipelines/parse", doc)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "INVALID_PIPELINE" {
		t.Errorf("code = %q, want INVALID_PIPELINE", body.Code)
	}
	if !strings.Contains(body.Detail, "missing id") {
		t.Errorf("detail = %q, want mention of missing id", body.Detail)
	}
}

func TestParseBodyTooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 64

	srv := newTestServer(t, cfg)
	rec := doRequest(srv.Router(), http.MethodPost, "/pipelines/parse", validPipeline)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "PAYLOAD_TOO_LARGE" {
		t.Errorf("code = %q, want PAYLOAD_TOO_LARGE", body.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimit = 1
	cfg.Server.RateBurst = 1

	srv := newTestServer(t, cfg)
	router := srv.Router()

	if rec := doRequest(router, http.MethodGet, "/", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", rec.Code, http.StatusOK)
	}
	rec := doRequest(router, http.MethodGet, "/", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", body.Code)
	}

	// Probes bypass the limiter.
	for i := 0; i < 5; i++ {
		if rec := doRequest(router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
			t.Fatalf("healthz request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimit = 0

	srv := newTestServer(t, cfg)
	router := srv.Router()

	for i := 0; i < 20; i++ {
		if rec := doRequest(router, http.MethodGet, "/", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodGet, "/nope", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Detail != "Not Found" {
		t.Errorf("detail = %q, want Not Found", body.Detail)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(srv.Router(), http.MethodGet, "/pipelines/parse", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if !strings.Contains(rec.Body.String(), "Method Not Allowed") {
		t.Errorf("body = %q, want Method Not Allowed", rec.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(srv.Router(), http.MethodGet, "/", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header is empty")
	}

	// A caller-provided id is echoed back unchanged.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-me")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "trace-me" {
		t.Errorf("X-Request-ID = %q, want trace-me", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/pipelines/parse", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	// Generate at least one analysis sample first.
	if rec := doRequest(router, http.MethodPost, "/pipelines/parse", validPipeline); rec.Code != http.StatusOK {
		t.Fatalf("parse status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec := doRequest(router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, metric := range []string{"pipecheck_parse_total", "pipecheck_http_requests_total"} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}

func TestRecoverer(t *testing.T) {
	srv := newTestServer(t, nil)
	h := srv.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
}

func TestStartShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second

	srv := newTestServer(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"INVALID_INPUT", http.StatusBadRequest},
		{"INVALID_FORMAT", http.StatusBadRequest},
		{"INVALID_PIPELINE", http.StatusUnprocessableEntity},
		{"PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"RATE_LIMITED", http.StatusTooManyRequests},
		{"NOT_FOUND", http.StatusNotFound},
		{"FILE_NOT_FOUND", http.StatusNotFound},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := statusFor(errors.Code(tt.code)); got != tt.want {
				t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
