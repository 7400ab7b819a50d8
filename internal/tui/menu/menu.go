// ABOUTME: Screen selection menu shown when the TUI starts
// ABOUTME: Wraps a huh select so the dashboard or any list page can be opened

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

// Dashboard is the target name of the fleet summary screen
const Dashboard = "dashboard"

// SelectedMsg is sent when a target is chosen
type SelectedMsg struct {
	Target string
}

// CancelledMsg is sent when the user leaves the menu
type CancelledMsg struct{}

type option struct {
	label  string
	target string
}

// options lists the dashboard first, then every page in menu order
var options = []option{
	{label: "Fleet dashboard", target: Dashboard},
	{label: "Servers", target: pages.ServersPage},
	{label: "Alerts", target: pages.AlertsPage},
	{label: "Remediation actions", target: pages.ActionsPage},
	{label: "Scans", target: pages.ScansPage},
	{label: "Power costs", target: pages.CostsPage},
}

// Targets returns every selectable target in menu order
func Targets() []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.target
	}
	return out
}

// Label returns the menu label of target, or target itself when unknown
func Label(target string) string {
	for _, o := range options {
		if o.target == target {
			return o.label
		}
	}
	return target
}

// Menu is the target selection screen
type Menu struct {
	form     *huh.Form
	selected string
}

// New creates a menu with the cursor on selected (the dashboard when empty)
func New(selected string) *Menu {
	if selected == "" {
		selected = Dashboard
	}
	m := &Menu{selected: selected}

	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.label, o.target))
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Open").
				Options(opts...).
				Value(&m.selected),
		),
	).WithTheme(huh.ThemeBase()).WithShowHelp(false)
	return m
}

// Selected returns the highlighted target
func (m *Menu) Selected() string {
	return m.selected
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc":
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		target := m.selected
		return m, func() tea.Msg { return SelectedMsg{Target: target} }
	}
	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}
