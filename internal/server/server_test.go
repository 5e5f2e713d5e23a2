package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/probekit/healthd/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func TestRouting(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"health GET", http.MethodGet, "/health", http.StatusOK},
		{"health HEAD", http.MethodHead, "/health", http.StatusOK},
		{"health POST not allowed", http.MethodPost, "/health", http.StatusMethodNotAllowed},
		{"health DELETE not allowed", http.MethodDelete, "/health", http.StatusMethodNotAllowed},
		{"health trailing slash", http.MethodGet, "/health/", http.StatusNotFound},
		{"health sub-path", http.MethodGet, "/health/live", http.StatusNotFound},
		{"ready", http.MethodGet, "/ready", http.StatusOK},
		{"status", http.MethodGet, "/status", http.StatusOK},
		{"openapi", http.MethodGet, "/openapi.json", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"index", http.MethodGet, "/", http.StatusOK},
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHealthContract(t *testing.T) {
	srv := newTestServer(t)

	getRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if getRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", getRec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(getRec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body) != 1 || body["status"] != "ok" {
		t.Errorf(`expected body {"status":"ok"}, got %s`, getRec.Body.String())
	}

	headRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(headRec, httptest.NewRequest(http.MethodHead, "/health", nil))

	if headRec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for HEAD, got %d", headRec.Code)
	}
	if headRec.Body.Len() != 0 {
		t.Errorf("expected empty body for HEAD, got %q", headRec.Body.String())
	}
	for _, header := range []string{"Content-Type", "Content-Length"} {
		if got, want := headRec.Header().Get(header), getRec.Header().Get(header); got != want {
			t.Errorf("%s: HEAD got %q, GET got %q", header, got, want)
		}
	}
}

func TestHealthMethodNotAllowedHasAllowHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Errorf("expected Allow header to contain GET, got %q", allow)
	}
}

func TestHealthConcurrent(t *testing.T) {
	srv := newTestServer(t)

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", rec.Code)
			}
			if rec.Body.String() != `{"status":"ok"}` {
				t.Errorf("unexpected body %q", rec.Body.String())
			}
		}()
	}

	wg.Wait()
}

func TestReadinessDrain(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 before drain, got %d", rec.Code)
	}

	srv.draining.Store(true)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 while draining, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "not ready" {
		t.Errorf("expected status %q, got %q", "not ready", body["status"])
	}
}

func TestStatusReport(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var report struct {
		Status  string          `json:"status"`
		Version string          `json:"version"`
		Uptime  string          `json:"uptime"`
		Checks  map[string]bool `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if report.Status != "ok" {
		t.Errorf("expected status ok, got %q", report.Status)
	}
	if report.Version == "" {
		t.Error("expected non-empty version")
	}
	if report.Uptime == "" {
		t.Error("expected non-empty uptime")
	}
	if !report.Checks["serving"] {
		t.Error("expected serving check to be true")
	}
}

func TestIndexEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var doc struct {
		Service   string            `json:"service"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if doc.Service != "healthd" {
		t.Errorf("expected service healthd, got %q", doc.Service)
	}
	if doc.Endpoints["health"] != "/health" {
		t.Errorf("expected health endpoint in index, got %v", doc.Endpoints)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "probe-1")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "probe-1" {
		t.Errorf("expected echoed request id probe-1, got %q", got)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff header, got %q", got)
	}
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS header to be set")
	}
}

func TestMetricEndpointLabelBounded(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/nope", "/some/random/path", "/health/live"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	got := testutil.ToFloat64(srv.metrics.RequestCount.WithLabelValues(http.MethodGet, "unmatched", "404"))
	if got != 3 {
		t.Errorf("unmatched 404 count = %v, want 3", got)
	}

	got = testutil.ToFloat64(srv.metrics.RequestCount.WithLabelValues(http.MethodGet, "/health", "200"))
	if got != 1 {
		t.Errorf("/health 200 count = %v, want 1", got)
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Observability.Metrics.Enabled = false

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 when metrics disabled, got %d", rec.Code)
	}
}
