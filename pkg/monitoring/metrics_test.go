package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsInitialization(t *testing.T) {
	metrics := []prometheus.Collector{
		ExternalServiceRequestsTotal,
		ExternalServiceRequestDuration,
		RetriesTotal,
		RateLimitWaitTime,
		CacheHits,
		CacheMisses,
		ElementsFetched,
		RecordsEmitted,
		RecordsDropped,
		CategoryRunsTotal,
		CategoryDuration,
		RunDuration,
		LastRunTimestamp,
		LastSuccessTimestamp,
		ErrorsTotal,
		SystemInfo,
	}

	for _, metric := range metrics {
		if metric == nil {
			t.Error("Metric is nil")
		}
	}
}

func TestRecordExternalServiceRequest(t *testing.T) {
	ExternalServiceRequestsTotal.Reset()

	RecordExternalServiceRequest("overpass", "query", 500*time.Millisecond, true)
	if got := testutil.ToFloat64(ExternalServiceRequestsTotal.WithLabelValues("overpass", "query", "success")); got != 1 {
		t.Errorf("Expected 1 successful external request, got %v", got)
	}

	RecordExternalServiceRequest("overpass", "query", 300*time.Millisecond, false)
	if got := testutil.ToFloat64(ExternalServiceRequestsTotal.WithLabelValues("overpass", "query", "error")); got != 1 {
		t.Errorf("Expected 1 failed external request, got %v", got)
	}
}

func TestRecordCategory(t *testing.T) {
	CategoryRunsTotal.Reset()
	ElementsFetched.Reset()
	RecordsDropped.Reset()
	RecordsEmitted.Reset()

	RecordCategory("hotels", StatusSuccess, 2*time.Second, 12, 3, 2, 7)

	if got := testutil.ToFloat64(CategoryRunsTotal.WithLabelValues("hotels", StatusSuccess)); got != 1 {
		t.Errorf("Expected 1 successful hotels run, got %v", got)
	}
	if got := testutil.ToFloat64(ElementsFetched.WithLabelValues("hotels")); got != 12 {
		t.Errorf("Expected 12 fetched elements, got %v", got)
	}
	if got := testutil.ToFloat64(RecordsDropped.WithLabelValues("hotels", DropIneligible)); got != 3 {
		t.Errorf("Expected 3 ineligible drops, got %v", got)
	}
	if got := testutil.ToFloat64(RecordsDropped.WithLabelValues("hotels", DropUnnamed)); got != 2 {
		t.Errorf("Expected 2 unnamed drops, got %v", got)
	}
	if got := testutil.ToFloat64(RecordsEmitted.WithLabelValues("hotels")); got != 7 {
		t.Errorf("Expected 7 emitted records, got %v", got)
	}
}

func TestRecordRun(t *testing.T) {
	finished := time.Unix(1700000000, 0)

	RecordRun(finished, 90*time.Second, true)
	if got := testutil.ToFloat64(RunDuration); got != 90 {
		t.Errorf("Expected run duration 90, got %v", got)
	}
	if got := testutil.ToFloat64(LastSuccessTimestamp); got != 1700000000 {
		t.Errorf("Expected last success timestamp, got %v", got)
	}

	RecordRun(finished.Add(time.Hour), time.Second, false)
	if got := testutil.ToFloat64(LastRunTimestamp); got != 1700003600 {
		t.Errorf("Expected last run timestamp to advance, got %v", got)
	}
	if got := testutil.ToFloat64(LastSuccessTimestamp); got != 1700000000 {
		t.Errorf("Failed run must not advance last success, got %v", got)
	}
}

func TestCacheAndRetryCounters(t *testing.T) {
	CacheHits.Reset()
	CacheMisses.Reset()
	RetriesTotal.Reset()
	ErrorsTotal.Reset()

	RecordCacheHit("overpass")
	RecordCacheMiss("overpass")
	RecordCacheMiss("overpass")
	RecordRetry("overpass")
	RecordError("overpass", "PARSE_ERROR")

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("overpass")); got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("overpass")); got != 2 {
		t.Errorf("Expected 2 cache misses, got %v", got)
	}
	if got := testutil.ToFloat64(RetriesTotal.WithLabelValues("overpass")); got != 1 {
		t.Errorf("Expected 1 retry, got %v", got)
	}
	if got := testutil.ToFloat64(ErrorsTotal.WithLabelValues("overpass", "PARSE_ERROR")); got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
}
