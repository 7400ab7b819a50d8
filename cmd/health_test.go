// ABOUTME: Tests for the health command
// ABOUTME: Verifies health check output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
)

func TestFormatHealthHuman(t *testing.T) {
	resp := &client.HealthResponse{
		Status:   "healthy",
		Version:  "1.4.0",
		Database: "connected",
		Uptime:   7200,
	}

	output := formatHealthHuman("http://localhost:8080", resp)

	for _, want := range []string{"http://localhost:8080", "Status:   healthy", "Version:  1.4.0", "Database: connected", "2 hours"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestFormatHealthHuman_UnknownUptime(t *testing.T) {
	output := formatHealthHuman("http://localhost:8080", &client.HealthResponse{Status: "healthy"})

	if !strings.Contains(output, "Uptime:   unknown") {
		t.Errorf("expected unknown uptime, got:\n%s", output)
	}
}

func TestFormatHealthJSON(t *testing.T) {
	resp := &client.HealthResponse{Status: "healthy", Version: "1.4.0", Uptime: 60}

	output := formatHealthJSON("http://localhost:8080", resp)

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("expected valid JSON, got error: %v", err)
	}
	if result["backend"] != "http://localhost:8080" {
		t.Errorf("expected backend URL in JSON, got %v", result["backend"])
	}
	if result["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", result["status"])
	}
	if result["uptime_seconds"] != float64(60) {
		t.Errorf("expected uptime_seconds 60, got %v", result["uptime_seconds"])
	}
}

func TestRunHealth_Success(t *testing.T) {
	b := newBackend(t)
	b.handle("GET /api/v1/system/health", http.StatusOK, client.HealthResponse{Status: "healthy", Version: "1.4.0"})

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "healthy") {
		t.Errorf("expected status in output, got:\n%s", buf.String())
	}
}

func TestRunHealth_BackendError(t *testing.T) {
	b := newBackend(t)
	b.handle("GET /api/v1/system/health", http.StatusServiceUnavailable, map[string]string{"error": "database unavailable"})

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Error: backend error: database unavailable") {
		t.Errorf("expected backend error message, got:\n%s", buf.String())
	}
}

func TestRunHealth_ConnectionError(t *testing.T) {
	isolateConfig(t)
	apiURL = "http://127.0.0.1:1"

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2 for connection error, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "cannot connect to backend") {
		t.Errorf("expected connection error message, got:\n%s", buf.String())
	}
}
