// Package metrics records request pipeline counters in a dedicated
// Prometheus registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "notion_cli"

// Recorder holds the pipeline collectors.
type Recorder struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	retries     *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "API request attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of API request attempts.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retries scheduled by error kind.",
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "GET requests served from the response cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cacheable GET requests not found in the response cache.",
		}),
	}

	r.registry.MustRegister(r.requests, r.duration, r.retries, r.cacheHits, r.cacheMisses)
	return r
}

// Registry returns the registry holding the pipeline collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRequest records one request attempt.
func (r *Recorder) ObserveRequest(method, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, outcome).Inc()
	r.duration.WithLabelValues(method).Observe(d.Seconds())
}

// Retry records a scheduled retry for an error kind.
func (r *Recorder) Retry(kind string) {
	if r == nil {
		return
	}
	r.retries.WithLabelValues(kind).Inc()
}

// CacheHit records a response served from cache.
func (r *Recorder) CacheHit() {
	if r == nil {
		return
	}
	r.cacheHits.Inc()
}

// CacheMiss records a cacheable request that missed.
func (r *Recorder) CacheMiss() {
	if r == nil {
		return
	}
	r.cacheMisses.Inc()
}

// WriteFile writes the registry to path in the text exposition format, for
// pickup by a node_exporter textfile collector.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("error writing metrics file: %w", err)
	}
	return nil
}
