// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes keyboard input to child components

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/session"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/dashboard"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/filterform"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/icons"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/listview"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/menu"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenDashboard
	ScreenList
	ScreenFilter
)

// Layout constants
const (
	minTerminalWidth = 80 // Narrowest frame drawn, even in smaller terminals
	contentPadding   = 2  // Horizontal padding each side of the content area
	frameLines       = 4  // Header, footer and the blank lines around content
)

// API is every backend call the screens make
type API interface {
	pages.ServerAPI
	pages.AlertAPI
	pages.ActionAPI
	pages.ScanAPI
	pages.CostAPI
}

// Deps is what the TUI needs from the outside world
type Deps struct {
	API API
	// Names resolves server ids on the alert and action screens. Optional.
	Names   func(context.Context) pages.Lookup
	Options pages.Options
	// Session remembers filters per page across runs. Optional.
	Session      *session.Store
	PollInterval time.Duration
	// Backend is shown in the header.
	Backend string
}

// summaryLoadedMsg is sent when a dashboard refresh completes
type summaryLoadedMsg struct {
	gen     int
	summary *pages.Summary
	err     error
}

// dashPollMsg triggers a dashboard refresh for one poll generation
type dashPollMsg struct {
	gen int
}

// App is the root model for the TUI
type App struct {
	deps   Deps
	screen Screen
	width  int
	height int

	// Child models
	menu      *menu.Menu
	dashboard *dashboard.Dashboard
	list      listview.Screen
	filter    *filterform.Form

	dashGen      int
	dashLoading  bool
	lastTarget   string
	savedFilters string
}

// New creates a new TUI application
func New(deps Deps) *App {
	return &App{
		deps:      deps,
		screen:    ScreenMenu,
		menu:      menu.New(""),
		dashboard: dashboard.New(0, 0),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.menu.Init()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(a.contentWidth(), a.contentHeight())
		if a.list != nil {
			a.list.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.filter != nil {
			a.filter.SetWidth(a.contentWidth())
		}
		return a, a.forwardForms(msg)

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}

		// Route to current screen
		switch a.screen {
		case ScreenMenu:
			return a.updateMenu(msg)
		case ScreenDashboard:
			return a.updateDashboard(msg)
		case ScreenList:
			return a.updateList(msg)
		case ScreenFilter:
			return a.updateFilter(msg)
		}
		return a, nil

	case menu.SelectedMsg:
		return a, a.open(msg.Target)

	case menu.CancelledMsg:
		return a, a.quit()

	case listview.BackMsg:
		return a, a.backToMenu()

	case listview.FilterRequestedMsg:
		if a.list == nil {
			return a, nil
		}
		a.filter = filterform.New(a.list.Title(), a.list.Schema(), a.list.Filters())
		a.filter.SetWidth(a.contentWidth())
		a.screen = ScreenFilter
		return a, a.filter.Init()

	case filterform.AppliedMsg:
		a.filter = nil
		a.screen = ScreenList
		if a.list == nil {
			return a, nil
		}
		cmd := a.list.ApplyFilters(msg.Filters)
		a.persistFilters()
		return a, cmd

	case filterform.CancelledMsg:
		a.filter = nil
		a.screen = ScreenList
		return a, nil

	case summaryLoadedMsg:
		if msg.gen != a.dashGen {
			return a, nil
		}
		a.dashLoading = false
		if msg.err != nil {
			a.dashboard.Fail(msg.err)
			return a, nil
		}
		a.dashboard.Update(msg.summary, time.Now())
		return a, nil

	case dashPollMsg:
		if msg.gen != a.dashGen || a.screen != ScreenDashboard {
			return a, nil
		}
		return a, tea.Batch(a.loadSummary(), a.scheduleDashPoll())
	}

	// Fetch results, spinner ticks and huh internals go to whoever is alive
	var cmds []tea.Cmd
	if a.list != nil {
		model, cmd := a.list.Update(msg)
		a.list = model.(listview.Screen)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, a.forwardForms(msg))
	return a, tea.Batch(cmds...)
}

// forwardForms passes non-key messages to the huh form on screen
func (a *App) forwardForms(msg tea.Msg) tea.Cmd {
	switch a.screen {
	case ScreenMenu:
		model, cmd := a.menu.Update(msg)
		a.menu = model.(*menu.Menu)
		return cmd
	case ScreenFilter:
		if a.filter == nil {
			return nil
		}
		model, cmd := a.filter.Update(msg)
		a.filter = model.(*filterform.Form)
		return cmd
	}
	return nil
}

func (a *App) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, a.quit()
	case "r":
		return a, a.loadSummary()
	case "b", "esc":
		return a, a.backToMenu()
	case "1", "2", "3", "4", "5":
		idx := int(msg.String()[0] - '1')
		return a, a.open(pages.Names[idx])
	}
	return a, nil
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.list == nil {
		return a, nil
	}
	if msg.String() == "q" && !a.list.Capturing() {
		return a, a.quit()
	}
	model, cmd := a.list.Update(msg)
	a.list = model.(listview.Screen)
	a.persistFilters()
	return a, cmd
}

func (a *App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.filter == nil {
		return a, nil
	}
	model, cmd := a.filter.Update(msg)
	a.filter = model.(*filterform.Form)
	return a, cmd
}

// open switches to target, a page name or the dashboard
func (a *App) open(target string) tea.Cmd {
	a.lastTarget = target
	if target == menu.Dashboard {
		a.screen = ScreenDashboard
		a.dashGen++
		return tea.Batch(a.loadSummary(), a.scheduleDashPoll())
	}

	list := a.newList(target)
	if list == nil {
		return nil
	}
	a.closeList()
	a.list = list
	a.list.SetSize(a.contentWidth(), a.contentHeight())
	a.savedFilters = a.sessionFilters(target)
	a.screen = ScreenList
	return a.list.Init()
}

// newList binds a list screen for a page name
func (a *App) newList(name string) listview.Screen {
	d := a.deps
	cfg := listview.Config{
		PollInterval:   d.PollInterval,
		InitialFilters: a.sessionFilters(name),
	}
	switch name {
	case pages.ServersPage:
		return listview.New(pages.NewServers(d.API, d.Options), cfg)
	case pages.AlertsPage:
		cfg.Names = d.Names
		return listview.New(pages.NewAlerts(d.API, d.Options), cfg)
	case pages.ActionsPage:
		cfg.Names = d.Names
		return listview.New(pages.NewActions(d.API, d.Options), cfg)
	case pages.ScansPage:
		return listview.New(pages.NewScans(d.API, d.Options), cfg)
	case pages.CostsPage:
		return listview.New(pages.NewCosts(d.API, d.Options), cfg)
	default:
		return nil
	}
}

func (a *App) sessionFilters(name string) string {
	if a.deps.Session == nil {
		return ""
	}
	return a.deps.Session.Filters(name)
}

// persistFilters writes the list filters to the session when they changed
func (a *App) persistFilters() {
	if a.list == nil || a.deps.Session == nil {
		return
	}
	raw := a.list.FilterString()
	if raw == a.savedFilters {
		return
	}
	if err := a.deps.Session.SetFilters(a.list.Name(), raw); err != nil {
		slog.Warn("Failed to save filters", "page", a.list.Name(), "error", err)
		return
	}
	a.savedFilters = raw
}

func (a *App) closeList() {
	if a.list != nil {
		a.list.Close()
		a.list = nil
	}
	a.filter = nil
}

func (a *App) backToMenu() tea.Cmd {
	a.closeList()
	a.dashGen++
	a.screen = ScreenMenu
	a.menu = menu.New(a.lastTarget)
	return a.menu.Init()
}

func (a *App) quit() tea.Cmd {
	a.closeList()
	a.dashGen++
	return tea.Quit
}

// loadSummary creates a command to fetch the fleet summary
func (a *App) loadSummary() tea.Cmd {
	a.dashLoading = true
	gen, api := a.dashGen, a.deps.API
	return func() tea.Msg {
		s, err := pages.Summarize(context.Background(), api)
		return summaryLoadedMsg{gen: gen, summary: s, err: err}
	}
}

// scheduleDashPoll arms the next dashboard refresh for the current generation
func (a *App) scheduleDashPoll() tea.Cmd {
	if a.deps.PollInterval <= 0 {
		return nil
	}
	gen := a.dashGen
	return tea.Tick(a.deps.PollInterval, func(time.Time) tea.Msg {
		return dashPollMsg{gen: gen}
	})
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenMenu:
		content = a.menu.View()
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenList:
		if a.list != nil {
			content = a.list.View()
		}
	case ScreenFilter:
		if a.filter != nil {
			content = a.filter.View()
		}
	}

	return a.wrapWithFrame(lipgloss.NewStyle().Padding(0, contentPadding).Render(content))
}

// frameWidth is the drawn width: one less than the terminal to avoid wrapping
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// contentWidth calculates the width available inside the frame
func (a *App) contentWidth() int {
	return a.frameWidth() - 2*contentPadding
}

// contentHeight calculates the height available between header and footer
func (a *App) contentHeight() int {
	return max(a.height-frameLines, 0)
}

// context returns the right-hand header text for the current screen
func (a *App) context() string {
	switch a.screen {
	case ScreenDashboard:
		return "Dashboard"
	case ScreenList, ScreenFilter:
		if a.list != nil {
			return a.list.Title()
		}
	}
	return a.deps.Backend
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	left := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("HomelabCmd"))
	right := ""
	if c := a.context(); c != "" {
		right = " " + contextStyle.Render(c) + " "
	}

	// 4 for ╭─ and ─╮
	fill := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right))
	return borderStyle.Render("╭─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╮")
}

// shortcuts returns the footer key hints for the current screen
func (a *App) shortcuts() []string {
	switch a.screen {
	case ScreenMenu:
		return []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case ScreenDashboard:
		return []string{"r Refresh", "1-5 Pages", "b Back", "q Quit"}
	case ScreenList:
		if a.list != nil {
			return append(a.list.Help(), "q Quit")
		}
	case ScreenFilter:
		return []string{"↑↓ Field", "Enter Apply", "Esc Cancel"}
	}
	return nil
}

// updatedAt is the last refresh time of the screen, zero when not applicable
func (a *App) updatedAt() time.Time {
	switch a.screen {
	case ScreenDashboard:
		return a.dashboard.UpdatedAt()
	case ScreenList:
		if a.list != nil {
			return a.list.UpdatedAt()
		}
	}
	return time.Time{}
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := styles.KeyStyle
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	right := ""
	if at := a.updatedAt(); !at.IsZero() {
		right = " " + statusStyle.Render("Updated "+humanize.Time(at)) + " "
	}

	// Drop hints from the middle until the line fits; "q Quit" stays last
	hints := a.shortcuts()
	var left string
	for {
		styled := make([]string, 0, len(hints))
		for _, s := range hints {
			k, label, ok := strings.Cut(s, " ")
			if !ok {
				styled = append(styled, s)
				continue
			}
			styled = append(styled, keyStyle.Render(k)+" "+labelStyle.Render(label))
		}
		left = " " + strings.Join(styled, "  ") + " "
		if len(hints) <= 1 || lipgloss.Width(left)+lipgloss.Width(right)+4 <= width {
			break
		}
		hints = append(hints[:len(hints)-2], hints[len(hints)-1])
	}

	// 4 for ╰─ and ─╯
	fill := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right))
	return borderStyle.Render("╰─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI
func Run(deps Deps) error {
	p := tea.NewProgram(
		New(deps),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
