// Package monitoring defines the Prometheus metrics of an ingestion run and
// exports them when the run finishes.
package monitoring

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NERVsystems/osmingest/pkg/version"
)

const (
	// ServiceName is the job name used for exported metrics
	ServiceName = "osmingest"
)

// Registry holds every ingestion metric. A dedicated registry keeps pushes
// to the Pushgateway free of process-level collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// External service metrics
	ExternalServiceRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_external_service_requests_total",
			Help: "Total number of external service requests",
		},
		[]string{"service", "operation", "status"},
	)

	ExternalServiceRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmingest_external_service_request_duration_seconds",
			Help:    "External service request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"service", "operation"},
	)

	RetriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_request_retries_total",
			Help: "Total number of retried external requests",
		},
		[]string{"service"},
	)

	// Rate limiting metrics
	RateLimitWaitTime = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmingest_rate_limit_wait_duration_seconds",
			Help:    "Time spent waiting for the request rate limiter",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service"},
	)

	// Cache metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Pipeline metrics
	ElementsFetched = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_elements_fetched_total",
			Help: "OSM elements returned by Overpass per category",
		},
		[]string{"category"},
	)

	RecordsEmitted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_records_emitted_total",
			Help: "Normalized records written per category",
		},
		[]string{"category"},
	)

	RecordsDropped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_records_dropped_total",
			Help: "Elements dropped during normalization, by reason",
		},
		[]string{"category", "reason"},
	)

	CategoryRunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_category_runs_total",
			Help: "Category steps by outcome",
		},
		[]string{"category", "status"},
	)

	CategoryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmingest_category_duration_seconds",
			Help:    "Duration of one category fetch/normalize/persist cycle",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
		[]string{"category"},
	)

	RunDuration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "osmingest_run_duration_seconds",
			Help: "Wall-clock duration of the last ingestion run",
		},
	)

	LastRunTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "osmingest_last_run_timestamp_seconds",
			Help: "Unix time the last ingestion run finished",
		},
	)

	LastSuccessTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "osmingest_last_success_timestamp_seconds",
			Help: "Unix time the last fully successful ingestion run finished",
		},
	)

	// Dependency metrics
	DependencyUp = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osmingest_dependency_up",
			Help: "Whether a dependency passed its last preflight check (1) or not (0)",
		},
		[]string{"dependency"},
	)

	DependencyCheckLatency = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osmingest_dependency_check_latency_seconds",
			Help: "Latency of the last preflight check per dependency",
		},
		[]string{"dependency"},
	)

	// Error metrics
	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmingest_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemInfo = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osmingest_system_info",
			Help: "System information",
		},
		[]string{"version", "go_version", "build_commit", "build_date"},
	)
)

// Step outcome labels
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Drop reasons
const (
	DropIneligible = "ineligible"
	DropUnnamed    = "unnamed"
)

// RecordSystemInfo publishes the build information gauge
func RecordSystemInfo() {
	SystemInfo.WithLabelValues(version.BuildVersion, runtime.Version(), version.BuildCommit, version.BuildDate).Set(1)
}

// RecordExternalServiceRequest counts one finished external request
func RecordExternalServiceRequest(service, operation string, duration time.Duration, success bool) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	ExternalServiceRequestsTotal.WithLabelValues(service, operation, status).Inc()
	ExternalServiceRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func RecordRetry(service string) {
	RetriesTotal.WithLabelValues(service).Inc()
}

func RecordRateLimitWait(service string, duration time.Duration) {
	RateLimitWaitTime.WithLabelValues(service).Observe(duration.Seconds())
}

func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordCategory records the counters of one finished category step
func RecordCategory(category, status string, duration time.Duration, fetched, ineligible, unnamed, emitted int) {
	CategoryRunsTotal.WithLabelValues(category, status).Inc()
	CategoryDuration.WithLabelValues(category).Observe(duration.Seconds())
	ElementsFetched.WithLabelValues(category).Add(float64(fetched))
	RecordsDropped.WithLabelValues(category, DropIneligible).Add(float64(ineligible))
	RecordsDropped.WithLabelValues(category, DropUnnamed).Add(float64(unnamed))
	RecordsEmitted.WithLabelValues(category).Add(float64(emitted))
}

// RecordRun records the end of an ingestion run
func RecordRun(finished time.Time, duration time.Duration, success bool) {
	RunDuration.Set(duration.Seconds())
	LastRunTimestamp.Set(float64(finished.Unix()))
	if success {
		LastSuccessTimestamp.Set(float64(finished.Unix()))
	}
}
