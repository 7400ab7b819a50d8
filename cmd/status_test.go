// ABOUTME: Tests for the status command
// ABOUTME: Verifies fleet summary output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

func testSummary() *pages.Summary {
	return &pages.Summary{
		Servers: 5,
		ServersByStatus: map[string]int{
			client.ServerOnline:  3,
			client.ServerWarning: 1,
			client.ServerOffline: 1,
		},
		OpenAlerts: 3,
		AlertsBySeverity: map[string]int{
			client.SeverityCritical: 1,
			client.SeverityHigh:     2,
		},
		PendingActions: 2,
		TotalWatts:     1250,
		MonthlyCost:    1234.5,
	}
}

func TestFormatStatusHuman_WithData(t *testing.T) {
	output := formatStatusHuman(testSummary())

	for _, want := range []string{
		"Fleet:           critical",
		"Servers:         5 (3 online, 1 warning, 1 offline)",
		"Open alerts:     3 (1 critical, 2 high, 0 medium, 0 low)",
		"Pending actions: 2",
		"1,234.50 per month",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestFormatStatusHuman_NoServers(t *testing.T) {
	output := formatStatusHuman(&pages.Summary{})

	if !strings.Contains(output, "No servers registered yet") {
		t.Errorf("expected empty fleet message, got:\n%s", output)
	}
	if !strings.Contains(output, "discovery start") {
		t.Errorf("expected discovery hint, got:\n%s", output)
	}
}

func TestFormatStatusJSON(t *testing.T) {
	output := formatStatusJSON(testSummary())

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("expected valid JSON, got error: %v", err)
	}
	if result["servers"] != float64(5) {
		t.Errorf("expected servers 5, got %v", result["servers"])
	}
	if result["open_alerts"] != float64(3) {
		t.Errorf("expected open_alerts 3, got %v", result["open_alerts"])
	}
}

func TestFleetStatus(t *testing.T) {
	tests := []struct {
		name    string
		summary *pages.Summary
		want    string
	}{
		{
			name:    "healthy",
			summary: &pages.Summary{Servers: 2, ServersByStatus: map[string]int{client.ServerOnline: 2}},
			want:    "ok",
		},
		{
			name: "open alert",
			summary: &pages.Summary{Servers: 2, OpenAlerts: 1, ServersByStatus: map[string]int{client.ServerOnline: 2},
				AlertsBySeverity: map[string]int{client.SeverityLow: 1}},
			want: "warning",
		},
		{
			name:    "warning server",
			summary: &pages.Summary{Servers: 1, ServersByStatus: map[string]int{client.ServerWarning: 1}},
			want:    "warning",
		},
		{
			name:    "offline server",
			summary: &pages.Summary{Servers: 1, ServersByStatus: map[string]int{client.ServerOffline: 1}},
			want:    "critical",
		},
		{
			name:    "critical alert",
			summary: testSummary(),
			want:    "critical",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fleetStatus(tt.summary); got != tt.want {
				t.Errorf("fleetStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunStatus_Success(t *testing.T) {
	b := newBackend(t)
	b.fleet()

	var buf bytes.Buffer
	exitCode := runStatus(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	for _, want := range []string{
		"Servers:         2 (1 online, 0 warning, 1 offline)",
		"Open alerts:     1 (1 critical",
		"Pending actions: 1",
		"185W",
		"42.50 per month",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
		}
	}
}

func TestRunStatus_JSON(t *testing.T) {
	b := newBackend(t)
	b.fleet()
	jsonOutput = true

	var buf bytes.Buffer
	if exitCode := runStatus(context.Background(), &buf); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}

	var s pages.Summary
	if err := json.Unmarshal(buf.Bytes(), &s); err != nil {
		t.Fatalf("expected valid JSON, got error: %v", err)
	}
	if s.AvgCPU != 40 {
		t.Errorf("expected avg CPU over online servers to be 40, got %v", s.AvgCPU)
	}
}

func TestRunStatus_PartialFailure(t *testing.T) {
	b := newBackend(t)
	b.handle("GET /api/v1/servers", http.StatusOK, map[string]any{"servers": []any{}})
	b.handle("GET /api/v1/alerts", http.StatusInternalServerError, map[string]string{"error": "boom"})
	b.handle("GET /api/v1/actions", http.StatusOK, map[string]any{"actions": []any{}})
	b.handle("GET /api/v1/costs/breakdown", http.StatusOK, map[string]any{"servers": []any{}})

	var buf bytes.Buffer
	exitCode := runStatus(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "failed to load alerts") {
		t.Errorf("expected failing source in error, got:\n%s", buf.String())
	}
}
