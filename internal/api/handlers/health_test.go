package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeReporter struct {
	runID      string
	step       uint64
	particles  int
	integrator string
}

func (f *fakeReporter) RunID() string        { return f.runID }
func (f *fakeReporter) StepCount() uint64    { return f.step }
func (f *fakeReporter) ParticleCount() int   { return f.particles }
func (f *fakeReporter) IntegratorKind() string { return f.integrator }

func TestServeHealthzReportsNotReadyUntilSet(t *testing.T) {
	h := NewHealthHandler(&fakeReporter{})

	rr := httptest.NewRecorder()
	h.ServeHealthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before SetReady, got %d", rr.Code)
	}

	h.SetReady(true)

	rr = httptest.NewRecorder()
	h.ServeHealthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 after SetReady, got %d", rr.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Ready {
		t.Error("expected Ready=true in response body")
	}
}

func TestServeStatusReflectsReporter(t *testing.T) {
	reporter := &fakeReporter{runID: "abc-123", step: 42, particles: 2001, integrator: "YOSHIDA"}
	h := NewHealthHandler(reporter)

	rr := httptest.NewRecorder()
	h.ServeStatus(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	var status SimulationStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if status.RunID != "abc-123" || status.Step != 42 || status.Particles != 2001 || status.Integrator != "YOSHIDA" {
		t.Errorf("unexpected status payload: %+v", status)
	}
}
