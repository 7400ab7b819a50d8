// ABOUTME: Test to verify header/footer width alignment
// ABOUTME: Ensures frame renders at correct terminal width on every screen

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/menu"
)

func checkFrame(t *testing.T, view string, targetWidth int) {
	t.Helper()

	// Frame uses width-1 to prevent wrapping on some terminals,
	// but clamps to minimum of 80 for usability
	expectedWidth := max(targetWidth-1, 80)

	lines := strings.Split(view, "\n")
	header := lines[0]
	footer := lines[len(lines)-1]

	if !strings.HasPrefix(header, "╭") {
		t.Fatalf("Header not found in output: %q", header)
	}
	if w := lipgloss.Width(header); w != expectedWidth {
		t.Errorf("Header width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
		t.Logf("Header line: %q", header)
	}

	if !strings.HasPrefix(footer, "╰") {
		t.Fatalf("Footer not found in output: %q", footer)
	}
	if w := lipgloss.Width(footer); w != expectedWidth {
		t.Errorf("Footer width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
		t.Logf("Footer line: %q", footer)
	}
}

func TestFrameAlignment(t *testing.T) {
	for _, targetWidth := range []int{60, 80, 100, 120} {
		t.Run(fmt.Sprintf("menu_%d", targetWidth), func(t *testing.T) {
			app := New(Deps{API: testAPI(), Backend: "http://localhost:8000"})

			model, _ := app.Update(tea.WindowSizeMsg{Width: targetWidth, Height: 30})
			app = model.(*App)

			checkFrame(t, app.View(), targetWidth)
		})
	}
}

func TestFrameAlignmentOnList(t *testing.T) {
	// The servers screen has the longest shortcut list
	for _, targetWidth := range []int{80, 120} {
		t.Run(fmt.Sprintf("servers_%d", targetWidth), func(t *testing.T) {
			app, _ := newTestApp(t)
			app.Update(tea.WindowSizeMsg{Width: targetWidth, Height: 30})

			_, cmd := app.Update(menu.SelectedMsg{Target: pages.ServersPage})
			drain(t, app, cmd)

			checkFrame(t, app.View(), targetWidth)
		})
	}
}

func TestFooterKeepsQuitHint(t *testing.T) {
	app, _ := newTestApp(t)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	_, cmd := app.Update(menu.SelectedMsg{Target: pages.ServersPage})
	drain(t, app, cmd)

	footer := app.renderFooter()
	if !strings.Contains(footer, "Quit") {
		t.Errorf("footer should always offer quit: %q", footer)
	}
}
