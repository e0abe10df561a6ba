package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistryWithRegisterer(prometheus.NewRegistry())
}

func TestNewRegistry(t *testing.T) {
	r := newTestRegistry(t)
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	r.RecordHTTPRequest("GET", "/webhooks/amion", 200, 0.1)
}

func TestRecordHTTPRequestExposedViaHandler(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordHTTPRequest("GET", "/api/compliance/check", 200, 0.05)
	r.RecordHTTPRequest("POST", "/api/import/stage", 201, 0.2)
	r.RecordHTTPRequest("GET", "/api/compliance/check", 500, 0.02)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics handler, got %d", rec.Code)
	}

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}
	if !strings.Contains(string(body), "http_requests_total") {
		t.Error("expected http_requests_total to be exposed")
	}
}

func TestRecordContingencySimulation(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordContingencySimulation("n1", 1.25)
	r.RecordContingencySimulation("n2", 4.50)
}

func TestSetScheduledTasksPending(t *testing.T) {
	r := newTestRegistry(t)
	r.SetScheduledTasksPending("critical", 3)
	r.SetScheduledTasksPending("background", 120)
}

func TestSetImportBatchesActive(t *testing.T) {
	r := newTestRegistry(t)
	r.SetImportBatchesActive(2)
}

func TestRecordServiceOperationWithError(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordServiceOperation("webhook", "verify", 0.01, true)
	r.RecordServiceOperation("webhook", "verify", 0.01, false)
}

func TestRecordValidationError(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordValidationError("80_HOUR_RULE")
}
