package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Connection states
const (
	ConnConnected = "connected"
	ConnError     = "error"
)

// Overall health states
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// CheckFunc checks one dependency
type CheckFunc func(ctx context.Context) error

// ConnStatus is the outcome of the last check of one dependency
type ConnStatus struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Latency  int64  `json:"latency_ms"`
	Error    string `json:"error,omitempty"`
	Required bool   `json:"required"`
}

// ServiceHealth summarizes every dependency check
type ServiceHealth struct {
	Service     string                `json:"service"`
	Version     string                `json:"version"`
	Status      string                `json:"status"`
	CheckedAt   time.Time             `json:"checked_at"`
	Connections map[string]ConnStatus `json:"connections"`
}

// Ready reports whether every required dependency is connected
func (h ServiceHealth) Ready() bool {
	for _, c := range h.Connections {
		if c.Required && c.Status != ConnConnected {
			return false
		}
	}
	return true
}

// Failed lists the dependencies whose check failed, sorted by name
func (h ServiceHealth) Failed() []ConnStatus {
	var out []ConnStatus
	for _, c := range h.Connections {
		if c.Status != ConnConnected {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WriteJSON writes the report as indented JSON
func (h ServiceHealth) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}

// HealthChecker runs preflight checks against the run's dependencies
type HealthChecker struct {
	serviceName string
	version     string
	timeout     time.Duration

	mu          sync.Mutex
	checks      map[string]registeredCheck
	connections map[string]*ConnStatus
}

type registeredCheck struct {
	fn       CheckFunc
	required bool
}

// NewHealthChecker creates a new health checker instance
func NewHealthChecker(serviceName, version string) *HealthChecker {
	return &HealthChecker{
		serviceName: serviceName,
		version:     version,
		timeout:     10 * time.Second,
		checks:      make(map[string]registeredCheck),
		connections: make(map[string]*ConnStatus),
	}
}

// Register adds a dependency check. A failed required check makes the report not ready.
func (h *HealthChecker) Register(name string, required bool, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = registeredCheck{fn: fn, required: required}
}

// UpdateConnection records the status of a dependency and mirrors it in metrics
func (h *HealthChecker) UpdateConnection(name, status string, latency time.Duration, required bool, err error) {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}

	h.mu.Lock()
	h.connections[name] = &ConnStatus{
		Name:     name,
		Status:   status,
		Latency:  latency.Milliseconds(),
		Error:    errStr,
		Required: required,
	}
	h.mu.Unlock()

	up := 0.0
	if status == ConnConnected {
		up = 1
	}
	DependencyUp.WithLabelValues(name).Set(up)
	DependencyCheckLatency.WithLabelValues(name).Set(latency.Seconds())
}

// CheckAll runs every registered check concurrently and returns the report
func (h *HealthChecker) CheckAll(ctx context.Context) ServiceHealth {
	h.mu.Lock()
	checks := make(map[string]registeredCheck, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for name, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.performCheck(ctx, name, c)
		}()
	}
	wg.Wait()

	return h.GetHealth()
}

// performCheck executes one check and updates its status
func (h *HealthChecker) performCheck(ctx context.Context, name string, c registeredCheck) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("check panicked: %v", r)
			}
		}()
		return c.fn(ctx)
	}()

	status := ConnConnected
	if err != nil {
		status = ConnError
	}
	h.UpdateConnection(name, status, time.Since(start), c.required, err)
}

// GetHealth returns the current health status
func (h *HealthChecker) GetHealth() ServiceHealth {
	h.mu.Lock()
	defer h.mu.Unlock()

	// healthy -> degraded -> unhealthy
	status := HealthHealthy
	errorCount := 0
	requiredDown := false
	for _, conn := range h.connections {
		if conn.Status != ConnConnected {
			errorCount++
			if conn.Required {
				requiredDown = true
			}
		}
	}
	if requiredDown || (errorCount > 0 && errorCount > len(h.connections)/2) {
		status = HealthUnhealthy
	} else if errorCount > 0 {
		status = HealthDegraded
	}

	connections := make(map[string]ConnStatus, len(h.connections))
	for k, v := range h.connections {
		connections[k] = *v
	}

	return ServiceHealth{
		Service:     h.serviceName,
		Version:     h.version,
		Status:      status,
		CheckedAt:   time.Now().UTC(),
		Connections: connections,
	}
}
