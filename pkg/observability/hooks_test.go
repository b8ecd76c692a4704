package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "build")
	p.OnStageComplete(ctx, "build", time.Second, nil)
	p.OnDesign(ctx, 8, 4, 1)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "design")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/synthesize", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	prom := NewPrometheus(prometheus.NewRegistry())
	SetPipelineHooks(prom)
	SetCacheHooks(prom)
	SetHTTPHooks(prom)
	if Pipeline() != PipelineHooks(prom) || Cache() != CacheHooks(prom) || HTTP() != HTTPHooks(prom) {
		t.Error("Set*Hooks should install the adapter")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(custom) {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestPrometheusExposition(t *testing.T) {
	ctx := context.Background()
	prom := NewPrometheus(prometheus.NewRegistry())

	prom.OnStageComplete(ctx, "build", 3*time.Millisecond, nil)
	prom.OnStageComplete(ctx, "emit", time.Millisecond, errors.New("boom"))
	prom.OnDesign(ctx, 8, 4, 2)
	prom.OnCacheHit(ctx, "design")
	prom.OnCacheMiss(ctx, "design")
	prom.OnCacheSet(ctx, "artifact", 512)
	prom.OnRequest(ctx, "POST", "/synthesize", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	prom.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`prefixtower_stage_duration_seconds_count{stage="build"} 1`,
		`prefixtower_stage_errors_total{stage="emit"} 1`,
		`prefixtower_cache_lookups_total{key_type="design",result="hit"} 1`,
		`prefixtower_cache_written_bytes_total{key_type="artifact"} 512`,
		`prefixtower_http_requests_total{method="POST",route="/synthesize",status="200"} 1`,
		`prefixtower_design_height_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
