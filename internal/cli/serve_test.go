package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/prefixtower/pkg/archive"
	"github.com/matzehuels/prefixtower/pkg/observability"
	"github.com/matzehuels/prefixtower/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	prom := observability.NewPrometheus(prometheus.NewRegistry())
	observability.SetHTTPHooks(prom)
	t.Cleanup(observability.Reset)

	s := &server{
		runner:  pipeline.NewRunner(nil, nil, nil),
		store:   archive.NewMemoryStore(),
		logger:  log.New(&strings.Builder{}),
		metrics: prom.Handler(),
	}
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestServeSynthesize(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/synthesize", "application/json",
		strings.NewReader(`{"width": 8, "recipe": "sklansky", "formats": ["hdl", "dot"]}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var body synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body.Artifacts["hdl"], "module ") {
		t.Errorf("hdl artifact missing module:\n%s", body.Artifacts["hdl"])
	}
	if !strings.HasPrefix(body.Artifacts["dot"], "digraph") {
		t.Errorf("dot artifact = %q", body.Artifacts["dot"])
	}

	got, err := http.Get(ts.URL + "/designs/" + body.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer got.Body.Close()
	if got.StatusCode != http.StatusOK {
		t.Errorf("GET /designs/%s status = %d, want %d", body.ID, got.StatusCode, http.StatusOK)
	}
}

func TestServeErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad width", http.MethodPost, "/synthesize", `{"width": 0}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/synthesize", `{"width": 8, "colour": 1}`, http.StatusBadRequest},
		{"unknown recipe", http.MethodPost, "/synthesize", `{"width": 8, "recipe": "nope"}`, http.StatusBadRequest},
		{"rank out of range", http.MethodPost, "/synthesize", `{"width": 4, "rank": "5"}`, http.StatusBadRequest},
		{"missing design", http.MethodGet, "/designs/6f1c1e9e-3d5a-4a49-9a40-0c8b2f3e7d11", "", http.StatusNotFound},
		{"rank without width", http.MethodGet, "/rank?recipe=ripple", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestServeRankAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/rank?width=8&recipe=ripple")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	err = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if body["rank"] != "0" {
		t.Errorf("rank = %v, want %q", body["rank"], "0")
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var sb strings.Builder
	if _, err := io.Copy(&sb, resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `prefixtower_http_requests_total{method="GET",route="/rank",status="200"} 1`) {
		t.Errorf("metrics missing /rank request:\n%s", sb.String())
	}
}
