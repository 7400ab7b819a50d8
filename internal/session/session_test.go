// ABOUTME: Tests for the persistent session store
// ABOUTME: Validates discovery lifecycle, recent subnet limits, and per-page filters

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenEmpty(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, ok := s.Active(); ok {
		t.Error("expected no active discovery")
	}
	if len(s.RecentSubnets()) != 0 {
		t.Error("expected no recent subnets")
	}
}

func TestDiscoveryLifecycle(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)

	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := s.Begin(Discovery{ID: 42, Subnet: "192.168.1.0/24", StartedAt: started}); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	d, ok := reopened.Active()
	if !ok {
		t.Fatal("expected active discovery after reopen")
	}
	if d.ID != 42 || d.Subnet != "192.168.1.0/24" || !d.StartedAt.Equal(started) {
		t.Errorf("unexpected discovery %+v", d)
	}

	if err := reopened.End(); err != nil {
		t.Fatalf("End() error: %v", err)
	}
	final, _ := Open(dir)
	if _, ok := final.Active(); ok {
		t.Error("expected no active discovery after End")
	}
	if got := final.RecentSubnets(); len(got) != 1 || got[0] != "192.168.1.0/24" {
		t.Errorf("expected subnet kept in recent list, got %v", got)
	}
}

func TestRecentSubnetsDedupAndLimit(t *testing.T) {
	s, _ := Open(t.TempDir())
	for i := 0; i < MaxRecentSubnets+2; i++ {
		s.Begin(Discovery{ID: i, Subnet: fmt.Sprintf("10.0.%d.0/24", i)})
	}
	s.Begin(Discovery{ID: 99, Subnet: "10.0.4.0/24"})

	got := s.RecentSubnets()
	if len(got) != MaxRecentSubnets {
		t.Fatalf("expected %d subnets, got %d", MaxRecentSubnets, len(got))
	}
	if got[0] != "10.0.4.0/24" {
		t.Errorf("expected re-used subnet moved to front, got %v", got)
	}
	seen := map[string]bool{}
	for _, subnet := range got {
		if seen[subnet] {
			t.Errorf("duplicate subnet %s in %v", subnet, got)
		}
		seen[subnet] = true
	}
}

func TestFilters(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)

	if err := s.SetFilters("alerts", "severity=high&status=open"); err != nil {
		t.Fatalf("SetFilters() error: %v", err)
	}
	reopened, _ := Open(dir)
	if got := reopened.Filters("alerts"); got != "severity=high&status=open" {
		t.Errorf("unexpected filters %q", got)
	}
	if got := reopened.Filters("servers"); got != "" {
		t.Errorf("expected no servers filters, got %q", got)
	}

	reopened.SetFilters("alerts", "")
	final, _ := Open(dir)
	if got := final.Filters("alerts"); got != "" {
		t.Errorf("expected filters forgotten, got %q", got)
	}
}

func TestCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0600)

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, ok := s.Active(); ok {
		t.Error("expected fresh session")
	}
}

func TestInMemorySession(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := s.Begin(Discovery{ID: 1, Subnet: "10.0.0.0/24"}); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if d, ok := s.Active(); !ok || d.ID != 1 {
		t.Errorf("expected in-memory discovery, got %+v", d)
	}
}
