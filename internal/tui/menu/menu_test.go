// ABOUTME: Tests for the screen selection menu
// ABOUTME: Validates targets, labels and the selection message

package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

func TestMenuTargets(t *testing.T) {
	targets := Targets()
	if len(targets) != len(pages.Names)+1 {
		t.Fatalf("expected dashboard plus %d pages, got %v", len(pages.Names), targets)
	}
	if targets[0] != Dashboard {
		t.Errorf("expected dashboard first, got %s", targets[0])
	}
	for i, name := range pages.Names {
		if targets[i+1] != name {
			t.Errorf("expected %s at %d, got %s", name, i+1, targets[i+1])
		}
	}
}

func TestMenuLabel(t *testing.T) {
	if got := Label(pages.ActionsPage); got != "Remediation actions" {
		t.Errorf("unexpected label %q", got)
	}
	if got := Label("nope"); got != "nope" {
		t.Errorf("unknown targets should echo, got %q", got)
	}
}

func TestMenuDefaultsToDashboard(t *testing.T) {
	if got := New("").Selected(); got != Dashboard {
		t.Errorf("expected dashboard, got %s", got)
	}
	if got := New(pages.AlertsPage).Selected(); got != pages.AlertsPage {
		t.Errorf("expected alerts, got %s", got)
	}
}

func TestMenuCancel(t *testing.T) {
	m := New("")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Error("expected CancelledMsg on esc")
	}
}
