package monitoring

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportTextfile(t *testing.T) {
	RecordSystemInfo()
	path := filepath.Join(t.TempDir(), "osmingest.prom")

	if err := Export(context.Background(), ExportConfig{Textfile: path}, Registry, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	if !strings.Contains(string(data), "osmingest_system_info") {
		t.Errorf("textfile is missing system info:\n%s", data)
	}
}

func TestExportPushgateway(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	RecordSystemInfo()
	cfg := ExportConfig{
		PushgatewayURL: server.URL,
		Grouping:       map[string]string{"region": "kolkata"},
	}
	if err := Export(context.Background(), cfg, Registry, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/metrics/job/osmingest") {
		t.Errorf("unexpected push path %s", gotPath)
	}
	if !strings.Contains(gotPath, "region/kolkata") {
		t.Errorf("push path %s is missing the grouping", gotPath)
	}
	if gotBody == "" {
		t.Error("expected a non-empty push body")
	}
}

func TestExportReportsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := ExportConfig{
		PushgatewayURL: server.URL,
		Textfile:       filepath.Join(t.TempDir(), "missing-dir", "out.prom"),
	}
	err := Export(context.Background(), cfg, Registry, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, part := range []string{"pushing metrics", "writing metrics textfile"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("expected error to mention %q, got %v", part, err)
		}
	}
}

func TestExportNothingConfigured(t *testing.T) {
	if err := Export(context.Background(), ExportConfig{}, Registry, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
