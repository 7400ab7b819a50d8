// ABOUTME: Tests for the costs, scans, discovery and watch commands
// ABOUTME: Runs each command against the fake API and checks output and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/session"
)

func TestRunCosts_SortedWithTotal(t *testing.T) {
	b := newBackend(t)
	b.fleet()

	var buf bytes.Buffer
	exitCode := runCosts(context.Background(), &buf, "", "watts", true)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	out := buf.String()
	if strings.Index(out, "db-01") > strings.Index(out, "web-01") {
		t.Errorf("expected db-01 (120W) before web-01 (65W), got:\n%s", out)
	}
	if !strings.Contains(out, "Total monthly cost: 42.50") {
		t.Errorf("expected total, got:\n%s", out)
	}
}

func TestRunCosts_Search(t *testing.T) {
	b := newBackend(t)
	b.fleet()
	jsonOutput = true

	var buf bytes.Buffer
	if exitCode := runCosts(context.Background(), &buf, "web", "cost", false); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}

	var out struct {
		Items []struct {
			ServerID string `json:"server_id"`
		} `json:"items"`
		MonthlyCost float64 `json:"monthly_cost"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("expected valid JSON, got error: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].ServerID != "srv-1" {
		t.Errorf("expected only web-01, got %+v", out.Items)
	}
	if out.MonthlyCost != 30 {
		t.Errorf("expected monthly cost of matches to be 30, got %v", out.MonthlyCost)
	}
}

func TestRunCosts_InvalidSort(t *testing.T) {
	b := newBackend(t)
	b.fleet()

	var buf bytes.Buffer
	if exitCode := runCosts(context.Background(), &buf, "", "colour", false); exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
}

func TestRunScansStart(t *testing.T) {
	b := newBackend(t)
	b.handle("POST /api/v1/scans", http.StatusAccepted,
		map[string]any{"id": 4, "hostname": "nas-01", "scan_type": "full", "status": "pending"})

	var buf bytes.Buffer
	exitCode := runScansStart(context.Background(), &buf, "nas-01", true)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Started full scan 4 of nas-01 (pending)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if !strings.Contains(b.body("POST /api/v1/scans"), `"full"`) {
		t.Errorf("expected full scan type in request, got %s", b.body("POST /api/v1/scans"))
	}
}

func TestDiscoveryLifecycle(t *testing.T) {
	b := newBackend(t)
	started := time.Now().Add(-2 * time.Minute)
	b.handle("POST /api/v1/discovery", http.StatusAccepted,
		map[string]any{"id": 9, "subnet": "192.168.1.0/24", "status": "running", "started_at": started})
	b.handle("GET /api/v1/discovery/{id}", http.StatusOK, map[string]any{
		"id": 9, "subnet": "192.168.1.0/24", "status": "completed", "progress_percent": 100,
		"devices": []map[string]any{{"ip": "192.168.1.20", "hostname": "nas-01", "response_time_ms": 1.5, "ssh_reachable": true}},
	})

	var buf bytes.Buffer
	if exitCode := runDiscoveryStart(context.Background(), &buf, "192.168.1.0/24"); exitCode != 0 {
		t.Fatalf("start: expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Discovery 9 started for 192.168.1.0/24") {
		t.Errorf("unexpected start output:\n%s", buf.String())
	}

	buf.Reset()
	if exitCode := runDiscoveryStart(context.Background(), &buf, "10.0.0.0/24"); exitCode != 2 {
		t.Errorf("second start: expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "still active") {
		t.Errorf("expected active session error, got:\n%s", buf.String())
	}

	buf.Reset()
	if exitCode := runDiscoveryStatus(context.Background(), &buf); exitCode != 0 {
		t.Fatalf("status: expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	for _, want := range []string{"Status:    completed (100%)", "Found 1 device(s)", "nas-01", "2 minutes ago"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected status output to contain %q, got:\n%s", want, buf.String())
		}
	}

	// A finished discovery ends the session
	buf.Reset()
	if exitCode := runDiscoveryStatus(context.Background(), &buf); exitCode != 0 {
		t.Fatalf("second status: expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "No active discovery.") || !strings.Contains(buf.String(), "192.168.1.0/24") {
		t.Errorf("expected no active discovery with recent subnet, got:\n%s", buf.String())
	}
}

func TestDiscoveryStatus_GoneOnBackend(t *testing.T) {
	b := newBackend(t)
	b.handle("GET /api/v1/discovery/{id}", http.StatusNotFound, map[string]string{"error": "not found"})

	cfg, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	store, err := session.Open(cfg.Dir)
	if err != nil {
		t.Fatalf("session.Open() error = %v", err)
	}
	if err := store.Begin(session.Discovery{ID: 5, Subnet: "10.0.0.0/24", StartedAt: time.Now()}); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	var buf bytes.Buffer
	if exitCode := runDiscoveryStatus(context.Background(), &buf); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "no longer exists") {
		t.Errorf("expected stale session message, got:\n%s", buf.String())
	}

	buf.Reset()
	runDiscoveryClear(&buf)
	if !strings.Contains(buf.String(), "Discovery session cleared.") {
		t.Errorf("unexpected clear output:\n%s", buf.String())
	}
}

func TestRunWatch_RendersUntilCanceled(t *testing.T) {
	b := newBackend(t)
	b.fleet()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	exitCode := runWatch(ctx, &buf, "alerts", "status=open", time.Hour)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "--- alerts at") || !strings.Contains(buf.String(), "Server offline") {
		t.Errorf("expected one rendered refresh, got:\n%s", buf.String())
	}
	if b.count("GET /api/v1/alerts") != 1 {
		t.Errorf("expected one fetch within the interval, got %d", b.count("GET /api/v1/alerts"))
	}
}

func TestRunWatch_UnknownPage(t *testing.T) {
	newBackend(t)

	var buf bytes.Buffer
	exitCode := runWatch(context.Background(), &buf, "widgets", "", time.Second)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), `unknown page "widgets"`) {
		t.Errorf("expected unknown page error, got:\n%s", buf.String())
	}
}
