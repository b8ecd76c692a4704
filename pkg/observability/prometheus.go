package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements every hook interface on top of Prometheus
// collectors registered with one registry.
type Prometheus struct {
	gatherer prometheus.Gatherer

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	designHeight  prometheus.Histogram
	designBlocks  prometheus.Histogram
	designWidth   prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus registers the collectors with reg.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		gatherer: reg,
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prefixtower_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prefixtower_stage_errors_total",
			Help: "Pipeline stage failures",
		}, []string{"stage"}),
		designHeight: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "prefixtower_design_height",
			Help:    "Tree height of synthesized designs",
			Buckets: prometheus.LinearBuckets(1, 4, 16),
		}),
		designBlocks: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "prefixtower_design_blocks",
			Help:    "Blocks per synthesized design",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		designWidth: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "prefixtower_design_width",
			Help:    "Leaf count of synthesized designs",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prefixtower_cache_lookups_total",
			Help: "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prefixtower_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prefixtower_http_requests_total",
			Help: "Served HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prefixtower_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func (p *Prometheus) OnStageStart(context.Context, string) {}

func (p *Prometheus) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (p *Prometheus) OnDesign(_ context.Context, width, height, blocks int) {
	p.designWidth.Observe(float64(width))
	p.designHeight.Observe(float64(height))
	p.designBlocks.Observe(float64(blocks))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
