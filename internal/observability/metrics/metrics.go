// Package metrics registers the Prometheus instruments for the API server
// and the workers. Every helper is nil-safe so code paths exercised in tests
// can run without Init.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "gestionale_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	reportBuilds      *prometheus.CounterVec
	reportBuildLag    *prometheus.HistogramVec
	reportCacheEvents *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	ledgerSyncTotal *prometheus.CounterVec

	overdueMarked prometheus.Counter
)

// Init registers the metric instruments. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status class",
			},
			[]string{"route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)

		reportBuilds = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_builds_total",
				Help: "Total report overview builds by result",
			},
			[]string{"result"},
		)
		reportBuildLag = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_build_latency_seconds",
				Help:    "Report build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		reportCacheEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_cache_events_total",
				Help: "Report cache hits, misses and invalidations",
			},
			[]string{"event"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		ledgerSyncTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_sync_total",
				Help: "Total invoice ledger mirror operations by result",
			},
			[]string{"result"},
		)

		overdueMarked = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "overdue_invoices_marked_total",
				Help: "Total invoices flipped from sent to overdue",
			},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			reportBuilds,
			reportBuildLag,
			reportCacheEvents,
			exportTotal,
			exportLatency,
			ledgerSyncTotal,
			overdueMarked,
		)
	})
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(route, status string, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, status).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(duration.Seconds())
	}
}

// ObserveReportBuild records overview build duration and result.
func ObserveReportBuild(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportBuilds != nil {
		reportBuilds.WithLabelValues(result).Inc()
	}
	if reportBuildLag != nil {
		reportBuildLag.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReportCacheEvent counts a cache hit, miss or invalidation.
func IncReportCacheEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if reportCacheEvents != nil {
		reportCacheEvents.WithLabelValues(event).Inc()
	}
}

// ObserveExport records export latency and result per format.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncLedgerSync counts one ledger mirror attempt.
func IncLedgerSync(result string) {
	if result == "" {
		result = resultSuccess
	}
	if ledgerSyncTotal != nil {
		ledgerSyncTotal.WithLabelValues(result).Inc()
	}
}

// AddOverdueMarked counts invoices flipped to overdue.
func AddOverdueMarked(count int64) {
	if count <= 0 {
		return
	}
	if overdueMarked != nil {
		overdueMarked.Add(float64(count))
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	CacheHit        = "hit"
	CacheMiss       = "miss"
	CacheInvalidate = "invalidate"
)
