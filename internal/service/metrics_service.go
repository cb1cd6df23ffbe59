package service

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trotyl/uestc-sdk-go/internal/models"
)

// Search outcomes recorded by SearchService.
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
	OutcomeDenied   = "denied"
)

// MetricsService encapsulates Prometheus instrumentation and keeps counters for snapshots.
// All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	searchTotal     *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	requestCount         uint64
	requestDurationTotal uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	liveCount            uint64
	fallbackCount        uint64
	deniedCount          uint64
}

// NewMetricsService registers the collectors. recordCount, when set, is exported as a gauge.
func NewMetricsService(recordCount func() int) *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of gateway HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Total number of gateway HTTP requests",
	}, []string{"method", "path", "status"})

	searchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_requests_total",
		Help: "Searches by kind and how they resolved",
	}, []string{"kind", "outcome"})

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_fetch_duration_seconds",
		Help:    "Duration of live portal searches",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_read_seconds",
		Help:    "Latency of snapshot reads",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_write_seconds",
		Help:    "Latency of snapshot writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_hits_total",
		Help: "Total snapshot hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_misses_total",
		Help: "Total snapshot misses",
	})

	registry.MustRegister(requestDuration, requestTotal, searchTotal, fetchDuration, cacheLatency, cacheWrite, cacheHits, cacheMisses)

	if recordCount != nil {
		registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "record_cache_entries",
			Help: "Entries held in the session record cache",
		}, func() float64 {
			return float64(recordCount())
		}))
	}

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		searchTotal:     searchTotal,
		fetchDuration:   fetchDuration,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records gateway request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordSearch counts a resolved search.
func (m *MetricsService) RecordSearch(kind, outcome string) {
	if m == nil {
		return
	}
	m.searchTotal.WithLabelValues(kind, outcome).Inc()
	switch outcome {
	case OutcomeLive:
		atomic.AddUint64(&m.liveCount, 1)
	case OutcomeFallback:
		atomic.AddUint64(&m.fallbackCount, 1)
	case OutcomeDenied:
		atomic.AddUint64(&m.deniedCount, 1)
	}
}

// ObserveFetch records the duration of one live portal call.
func (m *MetricsService) ObserveFetch(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCacheOperation records snapshot hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite tracks the duration of snapshot writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() models.MetricsSnapshot {
	if m == nil {
		return models.MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		SnapshotHits:             hits,
		SnapshotMisses:           misses,
		SnapshotHitRatio:         ratio,
		LiveSearches:             atomic.LoadUint64(&m.liveCount),
		FallbackSearches:         atomic.LoadUint64(&m.fallbackCount),
		DeniedSearches:           atomic.LoadUint64(&m.deniedCount),
		GeneratedAt:              time.Now().UTC(),
	}
}
