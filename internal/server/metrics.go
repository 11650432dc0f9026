package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/pipecheck/pkg/observability"
)

// Metrics definitions
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipecheck_http_requests_total",
		Help: "HTTP requests by method, route, and status code.",
	}, []string{"method", "path", "code"})

	httpPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipecheck_http_panics_total",
		Help: "Requests that ended in a recovered panic.",
	})

	parseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipecheck_parse_duration_seconds",
		Help:    "Time spent analyzing a pipeline, excluding cache hits.",
		Buckets: prometheus.DefBuckets,
	})

	parseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipecheck_parse_total",
		Help: "Completed analyses by verdict.",
	}, []string{"verdict"})

	cacheEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipecheck_cache_events_total",
		Help: "Report cache hits, misses, and stores.",
	}, []string{"event"})
)

// metricsHooks feeds the observability hooks into prometheus.
type metricsHooks struct{}

func (metricsHooks) OnAnalyzeStart(context.Context, int, int) {}

func (metricsHooks) OnAnalyzeComplete(_ context.Context, isDAG, cached bool, d time.Duration, err error) {
	if err != nil {
		parseTotal.WithLabelValues("error").Inc()
		return
	}
	verdict := "dag"
	if !isDAG {
		verdict = "cyclic"
	}
	parseTotal.WithLabelValues(verdict).Inc()
	if !cached {
		parseDuration.Observe(d.Seconds())
	}
}

func (metricsHooks) OnCacheHit(context.Context, string) {
	cacheEventsTotal.WithLabelValues("hit").Inc()
}

func (metricsHooks) OnCacheMiss(context.Context, string) {
	cacheEventsTotal.WithLabelValues("miss").Inc()
}

func (metricsHooks) OnCacheSet(context.Context, string, int) {
	cacheEventsTotal.WithLabelValues("set").Inc()
}

func (metricsHooks) OnRequest(context.Context, string, string) {}

func (metricsHooks) OnResponse(_ context.Context, method, path string, statusCode int, _ time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
}

func (metricsHooks) OnPanic(context.Context, string, string, any) {
	httpPanicsTotal.Inc()
}

// registerMetricsHooks wires the prometheus implementation into the global
// hook registry. Safe to call more than once.
func registerMetricsHooks() {
	observability.SetAnalysisHooks(metricsHooks{})
	observability.SetCacheHooks(metricsHooks{})
	observability.SetHTTPHooks(metricsHooks{})
}
