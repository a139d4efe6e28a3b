package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and its background runs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	classifications  *prometheus.CounterVec
	runDuration      prometheus.Observer
	runAssignments   prometheus.Counter
	runDomainErrors  *prometheus.CounterVec
	runSkippedTeams  *prometheus.CounterVec
	evaluations      *prometheus.CounterVec
	evaluationRetry  prometheus.Counter
	evaluationFailed prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	classifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_classifications_total",
		Help: "Domain classifications by strategy and outcome",
	}, []string{"strategy", "outcome"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "assignment_run_duration_seconds",
		Help:    "Duration of mentor assignment runs",
		Buckets: prometheus.DefBuckets,
	})

	runAssignments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignments_created_total",
		Help: "Assignments created by distribution runs",
	})

	runDomainErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_domain_errors_total",
		Help: "Domains left unassigned by reason",
	}, []string{"reason"})

	runSkippedTeams := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_skipped_teams_total",
		Help: "Teams skipped by distribution runs by reason",
	}, []string{"reason"})

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluations_total",
		Help: "Team evaluations by score source",
	}, []string{"source"})

	evaluationRetry := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "evaluation_retries_total",
		Help: "Rate-limited judge calls that were retried",
	})

	evaluationFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "evaluation_failures_total",
		Help: "Teams whose evaluation could not be stored",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		classifications, runDuration, runAssignments, runDomainErrors, runSkippedTeams,
		evaluations, evaluationRetry, evaluationFailed, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		classifications:  classifications,
		runDuration:      runDuration,
		runAssignments:   runAssignments,
		runDomainErrors:  runDomainErrors,
		runSkippedTeams:  runSkippedTeams,
		evaluations:      evaluations,
		evaluationRetry:  evaluationRetry,
		evaluationFailed: evaluationFailed,
	}
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordClassification counts one classification. Outcome is "matched", "general" or "fallback".
func (m *MetricsService) RecordClassification(strategy, outcome string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(strategy, outcome).Inc()
}

// ObserveAssignmentRun records the shape of a finished distribution run.
func (m *MetricsService) ObserveAssignmentRun(duration time.Duration, assignments int, errorReasons, skipReasons []string) {
	if m == nil {
		return
	}
	m.runDuration.Observe(duration.Seconds())
	m.runAssignments.Add(float64(assignments))
	for _, reason := range errorReasons {
		m.runDomainErrors.WithLabelValues(reason).Inc()
	}
	for _, reason := range skipReasons {
		m.runSkippedTeams.WithLabelValues(reason).Inc()
	}
}

// RecordEvaluation counts one stored evaluation by source.
func (m *MetricsService) RecordEvaluation(source string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(source).Inc()
}

// RecordEvaluationRetry counts one rate-limit retry.
func (m *MetricsService) RecordEvaluationRetry() {
	if m == nil {
		return
	}
	m.evaluationRetry.Inc()
}

// RecordEvaluationFailure counts one team that could not be evaluated.
func (m *MetricsService) RecordEvaluationFailure() {
	if m == nil {
		return
	}
	m.evaluationFailed.Inc()
}
