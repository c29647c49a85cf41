package proxy_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finsight/gateway/internal/proxy"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticTokens struct{}

func (staticTokens) Mint() (string, error) { return "svc-token", nil }

func TestProxyRewritesPrefixAndPreservesBody(t *testing.T) {
	var gotPath, gotMethod, gotBody, gotAuth, gotHeader string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotHeader = r.Header.Get("X-Custom")

		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	p, err := proxy.New(upstream.URL, staticTokens{}, discardLogger())
	if err != nil {
		t.Fatalf("proxy.New: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/analysis/analyse-expenses", strings.NewReader(`{"expenses":[]}`))
	req.Header.Set("X-Custom", "kept")
	w := httptest.NewRecorder()

	p.ServeHTTP(w, req)

	if gotPath != "/api/analyse-expenses" {
		t.Fatalf("path = %q, want /api/analyse-expenses", gotPath)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("method = %q", gotMethod)
	}
	if gotBody != `{"expenses":[]}` {
		t.Fatalf("body = %q", gotBody)
	}
	if gotAuth != "Bearer svc-token" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotHeader != "kept" {
		t.Fatalf("custom header = %q", gotHeader)
	}

	// status passes through untouched
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if w.Body.String() != `{"ok":true}` {
		t.Fatalf("response body = %q", w.Body.String())
	}
}

func TestProxyRootPath(t *testing.T) {
	var gotPath string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer upstream.Close()

	p, err := proxy.New(upstream.URL, nil, discardLogger())
	if err != nil {
		t.Fatalf("proxy.New: %v", err)
	}

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analysis", nil))

	if gotPath != "/api/" {
		t.Fatalf("path = %q, want /api/", gotPath)
	}
}

func TestProxyUnreachableUpstream(t *testing.T) {
	// grab a port that nothing listens on
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	p, err := proxy.New(deadURL, nil, discardLogger())
	if err != nil {
		t.Fatalf("proxy.New: %v", err)
	}

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analysis/health", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	var envelope map[string]string

	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("bad envelope: %v, body=%s", err, w.Body.String())
	}

	if envelope["error"] != "analysis_unavailable" {
		t.Fatalf("error = %q", envelope["error"])
	}
	if envelope["detail"] == "" {
		t.Fatal("missing detail")
	}
}
