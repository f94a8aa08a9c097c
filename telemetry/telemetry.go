// Package telemetry provides monitoring for the retrieval pipeline.
package telemetry

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewLogger returns a logger with the component prefix convention used
// across the gateway.
func NewLogger(prefix string) *log.Logger {
	return log.New(log.Writer(), "["+prefix+"] ", log.LstdFlags)
}

// Telemetry holds the pipeline metrics. Each instance carries its own
// registry so construction is repeatable in tests.
type Telemetry struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	FetchOutcomes    *prometheus.CounterVec
	ExtractionErrors prometheus.Counter
	PointsPerAnswer  prometheus.Histogram
	PipelineSeconds  prometheus.Histogram
}

func New() *Telemetry {
	reg := prometheus.NewRegistry()
	t := &Telemetry{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webdistill_requests_total",
			Help: "Answer requests by result.",
		}, []string{"result"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webdistill_cache_hits_total",
			Help: "Requests served from the result cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webdistill_cache_misses_total",
			Help: "Requests that ran the full pipeline.",
		}),
		FetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webdistill_fetch_outcomes_total",
			Help: "Page fetch outcomes by result.",
		}, []string{"result"}),
		ExtractionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webdistill_extraction_errors_total",
			Help: "Per-source extraction failures that were skipped.",
		}),
		PointsPerAnswer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webdistill_points_per_answer",
			Help:    "Key points in each returned answer.",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
		PipelineSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webdistill_pipeline_duration_seconds",
			Help:    "End-to-end pipeline duration for cache misses.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		t.Requests, t.CacheHits, t.CacheMisses, t.FetchOutcomes,
		t.ExtractionErrors, t.PointsPerAnswer, t.PipelineSeconds,
	)
	return t
}

// Handler exposes the metrics registry for /metrics.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
