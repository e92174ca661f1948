package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for ingestion operations
const (
	// Run and category attributes
	AttrRunID            = "ingest.run_id"
	AttrCategory         = "ingest.category"
	AttrElementsFetched  = "ingest.elements.fetched"
	AttrElementsEligible = "ingest.elements.eligible"
	AttrRecordsEmitted   = "ingest.records.emitted"
	AttrStepStatus       = "ingest.step.status"

	// External service attributes
	AttrServiceName      = "osm.service.name"
	AttrServiceOperation = "osm.service.operation"
	AttrServiceURL       = "osm.service.url"
	AttrServiceStatus    = "osm.service.status"
	AttrQueryBytes       = "osm.query.bytes"

	// Cache attributes
	AttrCacheType = "osm.cache.type"
	AttrCacheHit  = "osm.cache.hit"

	// Rate limiting attributes
	AttrRateLimitService = "osm.ratelimit.service"
	AttrRateLimitWaitMs  = "osm.ratelimit.wait_ms"

	// HTTP attributes
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// Status values
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Service names
const (
	ServiceOverpass = "overpass"
)

// Cache types
const (
	CacheTypeOverpass = "overpass"
)

// CategoryAttributes returns attributes for one category step
func CategoryAttributes(category string, fetched, eligible, emitted int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCategory, category),
		attribute.Int(AttrElementsFetched, fetched),
		attribute.Int(AttrElementsEligible, eligible),
		attribute.Int(AttrRecordsEmitted, emitted),
	}
}

// ServiceAttributes returns attributes for external service calls
func ServiceAttributes(service, operation, url string, status int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrServiceName, service),
		attribute.String(AttrServiceOperation, operation),
		attribute.String(AttrServiceURL, url),
		attribute.Int(AttrServiceStatus, status),
	}
}

// CacheAttributes returns attributes for cache operations
func CacheAttributes(cacheType string, hit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCacheType, cacheType),
		attribute.Bool(AttrCacheHit, hit),
	}
}

// ErrorAttributes describes a failure; errType is its error code or outcome
func ErrorAttributes(errType string, err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, errType),
		attribute.String(AttrErrorMessage, err.Error()),
	}
}
