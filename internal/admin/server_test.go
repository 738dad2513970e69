package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tractorops-sim/internal/config"
	"tractorops-sim/internal/core"
	"tractorops-sim/internal/safety"
	"tractorops-sim/internal/source"
)

func newTestServer(t *testing.T, connect bool) (*httptest.Server, *core.Core) {
	t.Helper()
	cfg := config.Default()
	cfg.TickInterval = config.Duration(5 * time.Millisecond)
	cfg.Seed = 7
	c := core.New(cfg, nil, nil)
	if connect {
		if _, err := c.Connect(context.Background(), source.Descriptor{Type: source.TypeSimulation}); err != nil {
			t.Fatalf("Connect: %v", err)
		}
		t.Cleanup(func() { c.Disconnect(context.Background()) })
	}
	s := NewServer(c)
	ts := httptest.NewServer(s.mux)
	t.Cleanup(ts.Close)
	return ts, c
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestServer_StatusAndSnapshot(t *testing.T) {
	ts, _ := newTestServer(t, true)

	var status map[string]any
	resp := getJSON(t, ts.URL+"/status", &status)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if status["status"] != string(safety.StatusConnected) {
		t.Errorf("expected connected, got %v", status["status"])
	}

	var snapshot map[string]struct {
		Value float64 `json:"value"`
	}
	getJSON(t, ts.URL+"/snapshot", &snapshot)
	if _, ok := snapshot["engine_rpm"]; !ok {
		t.Error("snapshot missing engine_rpm")
	}

	var info struct {
		Model string `json:"model"`
	}
	getJSON(t, ts.URL+"/tractor-info", &info)
	if info.Model != "EduDemo 2025" {
		t.Errorf("expected EduDemo 2025, got %q", info.Model)
	}
}

func TestServer_HistoryRequiresChannel(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, err := http.Get(ts.URL + "/history")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without channel, got %d", resp.StatusCode)
	}

	resp = getJSON(t, ts.URL+"/history?channel=engine_rpm&count=5", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestServer_CommandRejectedWhileDisconnected(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Post(ts.URL+"/command", "application/json", strings.NewReader(`{"name":"horn"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var body struct {
		Accepted bool   `json:"accepted"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Accepted || body.Reason != string(safety.ReasonNotConnected) {
		t.Errorf("expected NOT_CONNECTED rejection, got %+v", body)
	}
}

func TestServer_CommandAccepted(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, err := http.Post(ts.URL+"/command", "application/json", strings.NewReader(`{"name":"horn"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	bad, err := http.Post(ts.URL+"/command", "application/json", strings.NewReader(`not json`))
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad payload, got %d", bad.StatusCode)
	}
}

func TestServer_EmergencyStopRoundTrip(t *testing.T) {
	ts, c := newTestServer(t, true)

	resp, err := http.Post(ts.URL+"/emergency-stop", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("emergency-stop: %d", resp.StatusCode)
	}
	if c.Status() != safety.StatusEmergencyStop {
		t.Fatalf("expected emergency_stop, got %s", c.Status())
	}

	resp, err = http.Post(ts.URL+"/clear-emergency-stop", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear-emergency-stop: %d", resp.StatusCode)
	}
	if c.Status() != safety.StatusConnected {
		t.Errorf("expected connected, got %s", c.Status())
	}
}

func TestServer_SafeModeToggle(t *testing.T) {
	ts, c := newTestServer(t, true)

	resp, err := http.Post(ts.URL+"/safe-mode?on=false", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("safe-mode: %d", resp.StatusCode)
	}
	if c.SafeMode() {
		t.Error("expected safe mode off")
	}

	resp, err = http.Post(ts.URL+"/safe-mode?on=maybe", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad value, got %d", resp.StatusCode)
	}
}
