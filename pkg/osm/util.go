package osm

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// OverpassBaseURL is the public Overpass API interpreter endpoint
	OverpassBaseURL = "https://overpass-api.de/api/interpreter"

	// UserAgent identifies the pipeline to the Overpass operators
	UserAgent = "osmingest/0.1.0"

	// DefaultTimeout bounds every HTTP request to Overpass
	DefaultTimeout = 30 * time.Second

	// DefaultRequestInterval spaces consecutive Overpass requests
	DefaultRequestInterval = 2 * time.Second
)

// NewLimiter returns a token bucket allowing one request per interval with the given burst
func NewLimiter(interval time.Duration, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}

// NewHTTPClient returns an HTTP client configured for Overpass requests
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
