package osm

import (
	"sync"
	"time"
)

// MonitoringHooks defines hooks for monitoring Overpass requests
type MonitoringHooks struct {
	// OnRequest is called before making a request
	OnRequest func(service, operation string)

	// OnResponse is called after a request finished, successfully or not
	OnResponse func(service, operation string, duration time.Duration, success bool)

	// OnRateLimit is called when the limiter made a request wait noticeably
	OnRateLimit func(service string, waitTime time.Duration)

	// OnRetry is called before a failed request is attempted again
	OnRetry func(service string, attempt int)

	// OnCache is called after every cache lookup
	OnCache func(service string, hit bool)

	// OnError is called when an error occurs
	OnError func(service, errorType string)
}

var (
	// Global monitoring hooks
	globalHooks *MonitoringHooks
	hooksMutex  sync.RWMutex
)

// SetMonitoringHooks sets global monitoring hooks used by clients without their own
func SetMonitoringHooks(hooks *MonitoringHooks) {
	hooksMutex.Lock()
	defer hooksMutex.Unlock()
	globalHooks = hooks
}

// getMonitoringHooks returns the current monitoring hooks
func getMonitoringHooks() *MonitoringHooks {
	hooksMutex.RLock()
	defer hooksMutex.RUnlock()
	return globalHooks
}

// hookSet never returns nil so call sites stay flat
type hookSet struct{ h *MonitoringHooks }

func (s hookSet) request(service, op string) {
	if s.h != nil && s.h.OnRequest != nil {
		s.h.OnRequest(service, op)
	}
}

func (s hookSet) response(service, op string, d time.Duration, ok bool) {
	if s.h != nil && s.h.OnResponse != nil {
		s.h.OnResponse(service, op, d, ok)
	}
}

func (s hookSet) rateLimit(service string, d time.Duration) {
	if s.h != nil && s.h.OnRateLimit != nil {
		s.h.OnRateLimit(service, d)
	}
}

func (s hookSet) retry(service string, attempt int) {
	if s.h != nil && s.h.OnRetry != nil {
		s.h.OnRetry(service, attempt)
	}
}

func (s hookSet) cache(service string, hit bool) {
	if s.h != nil && s.h.OnCache != nil {
		s.h.OnCache(service, hit)
	}
}

func (s hookSet) err(service, errorType string) {
	if s.h != nil && s.h.OnError != nil {
		s.h.OnError(service, errorType)
	}
}
