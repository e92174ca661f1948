package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewHealthChecker(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")

	if hc.serviceName != "test-service" {
		t.Errorf("Expected service name 'test-service', got %s", hc.serviceName)
	}
	if hc.version != "1.0.0" {
		t.Errorf("Expected version '1.0.0', got %s", hc.version)
	}

	health := hc.GetHealth()
	if health.Status != HealthHealthy {
		t.Errorf("Expected empty checker to be healthy, got %s", health.Status)
	}
	if !health.Ready() {
		t.Error("Empty checker should be ready")
	}
}

func TestCheckAllHealthy(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	hc.Register("overpass-ok", true, func(ctx context.Context) error { return nil })
	hc.Register("postgres-ok", false, func(ctx context.Context) error { return nil })

	health := hc.CheckAll(context.Background())
	if health.Status != HealthHealthy {
		t.Errorf("Expected healthy, got %s", health.Status)
	}
	if !health.Ready() {
		t.Error("Expected ready")
	}
	if len(health.Connections) != 2 {
		t.Errorf("Expected 2 connections, got %d", len(health.Connections))
	}
	if got := testutil.ToFloat64(DependencyUp.WithLabelValues("overpass-ok")); got != 1 {
		t.Errorf("Expected dependency_up 1, got %v", got)
	}
}

func TestCheckAllOptionalFailureDegrades(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	hc.Register("a-required", true, func(ctx context.Context) error { return nil })
	hc.Register("b-required", true, func(ctx context.Context) error { return nil })
	hc.Register("c-optional", false, func(ctx context.Context) error { return errors.New("refused") })

	health := hc.CheckAll(context.Background())
	if health.Status != HealthDegraded {
		t.Errorf("Expected degraded, got %s", health.Status)
	}
	if !health.Ready() {
		t.Error("Optional failure should not block readiness")
	}

	failed := health.Failed()
	if len(failed) != 1 || failed[0].Name != "c-optional" || failed[0].Error != "refused" {
		t.Errorf("Unexpected failures: %+v", failed)
	}
	if got := testutil.ToFloat64(DependencyUp.WithLabelValues("c-optional")); got != 0 {
		t.Errorf("Expected dependency_up 0, got %v", got)
	}
}

func TestCheckAllRequiredFailure(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	hc.Register("overpass-down", true, func(ctx context.Context) error { return errors.New("502") })
	hc.Register("textfile", false, func(ctx context.Context) error { return nil })
	hc.Register("other", false, func(ctx context.Context) error { return nil })

	health := hc.CheckAll(context.Background())
	if health.Status != HealthUnhealthy {
		t.Errorf("Expected unhealthy, got %s", health.Status)
	}
	if health.Ready() {
		t.Error("Required failure must block readiness")
	}
}

func TestCheckTimeoutAndPanic(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	hc.timeout = 20 * time.Millisecond
	hc.Register("slow", true, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	hc.Register("panics", false, func(ctx context.Context) error {
		panic("boom")
	})

	health := hc.CheckAll(context.Background())
	if health.Connections["slow"].Status != ConnError {
		t.Errorf("Expected slow check to time out, got %+v", health.Connections["slow"])
	}
	if health.Connections["panics"].Error == "" {
		t.Error("Expected panic to be reported as an error")
	}
}

func TestServiceHealthJSON(t *testing.T) {
	hc := NewHealthChecker("osmingest", "0.1.0")
	hc.UpdateConnection("overpass", ConnConnected, 120*time.Millisecond, true, nil)

	var buf bytes.Buffer
	if err := hc.GetHealth().WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	conns := decoded["connections"].(map[string]any)
	overpass := conns["overpass"].(map[string]any)
	if overpass["latency_ms"].(float64) != 120 {
		t.Errorf("Expected latency 120, got %v", overpass["latency_ms"])
	}
	if decoded["service"] != "osmingest" {
		t.Errorf("Unexpected service %v", decoded["service"])
	}
}
