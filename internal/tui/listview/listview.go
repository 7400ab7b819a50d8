// ABOUTME: Generic list screen driving a page controller from bubbletea
// ABOUTME: Fetches and mutates in commands, applies results in Update, polls with a generation

package listview

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/icons"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/styles"
)

// Screen is a list screen as the app sees it, whatever its entity type
type Screen interface {
	tea.Model
	Name() string
	Title() string
	Schema() *listctl.Schema
	Filters() listctl.FilterSet
	FilterString() string
	ApplyFilters(filters listctl.FilterSet) tea.Cmd
	SetSize(width, height int)
	// Capturing reports whether a text input owns the keyboard.
	Capturing() bool
	UpdatedAt() time.Time
	Help() []string
	Close()
}

// FilterRequestedMsg asks the app to open the filter form for this screen
type FilterRequestedMsg struct{}

// BackMsg asks the app to leave this screen
type BackMsg struct{}

// Config tunes a list screen
type Config struct {
	// PollInterval refreshes the list while the screen is open. Zero disables polling.
	PollInterval time.Duration
	// Names resolves server ids for rows that show them. Optional.
	Names func(context.Context) pages.Lookup
	// InitialFilters is a query string restored from the last session.
	InitialFilters string
}

// chrome is the number of lines around the table: title, status, footer, notices and input
const chrome = 9

var lastID atomic.Int64

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modePrompt
)

type fetchedMsg[E listctl.Entity] struct {
	owner  int64
	result listctl.FetchResult[E]
	names  pages.Lookup
}

type mutatedMsg[E listctl.Entity] struct {
	owner  int64
	result listctl.MutationResult[E]
}

type pollMsg struct {
	owner int64
	gen   int
}

// redrawMsg only forces a render, e.g. once a notice has expired
type redrawMsg struct {
	owner int64
}

// Model is the list screen for entities of type E
type Model[E listctl.Entity] struct {
	id    int64
	page  *pages.Page[E]
	cfg   Config
	keys  keyMap
	names pages.Lookup

	cursor int
	width  int
	height int

	mode     mode
	input    textinput.Model
	prompted *pages.Operation[E]
	target   E

	spinner  spinner.Model
	spinning bool
	pollGen  int
	hint     string
}

// New creates a list screen over page
func New[E listctl.Entity](page *pages.Page[E], cfg Config) *Model[E] {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40

	return &Model[E]{
		id:      lastID.Add(1),
		page:    page,
		cfg:     cfg,
		keys:    defaultKeys(),
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Name returns the page name
func (m *Model[E]) Name() string { return m.page.Name }

// Title returns the page title
func (m *Model[E]) Title() string { return m.page.Title }

// Schema returns the page filter schema
func (m *Model[E]) Schema() *listctl.Schema { return m.page.Schema() }

// Filters returns the active filters
func (m *Model[E]) Filters() listctl.FilterSet { return m.page.Controller.Filters() }

// FilterString returns the active filters as a query string
func (m *Model[E]) FilterString() string { return m.page.Controller.FilterString() }

// Capturing reports whether the search or prompt input is focused
func (m *Model[E]) Capturing() bool { return m.mode != modeBrowse }

// SetSize records the space available to the screen
func (m *Model[E]) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// UpdatedAt returns when the list was last fetched successfully
func (m *Model[E]) UpdatedAt() time.Time {
	if snap := m.page.Controller.Snapshot(); snap != nil {
		return snap.FetchedAt
	}
	return time.Time{}
}

// Close stops polling and discards any result still in flight
func (m *Model[E]) Close() {
	m.pollGen++
	m.page.Controller.Close()
}

// ApplyFilters replaces the filters and fetches when the change needs it
func (m *Model[E]) ApplyFilters(filters listctl.FilterSet) tea.Cmd {
	m.cursor = 0
	if t, ok := m.page.Controller.OnFilterChange(filters); ok {
		return m.fetch(t)
	}
	return nil
}

// Help lists the shortcuts of this screen for the footer
func (m *Model[E]) Help() []string {
	switch m.mode {
	case modeSearch:
		return []string{"Enter Keep", "Esc Clear"}
	case modePrompt:
		return []string{"Enter Confirm", "Esc Cancel"}
	}

	help := []string{"↑↓ Move"}
	if v := m.page.Controller.View(); v.ShowPagination {
		help = append(help, "←→ Page")
	}
	if _, ok := m.Schema().Lookup("q"); ok {
		help = append(help, "/ Search")
	}
	help = append(help, "f Filter", "r Refresh")
	for _, op := range m.page.Operations {
		help = append(help, op.Key+" "+op.Label)
	}
	return append(help, "b Back")
}

// Init implements tea.Model
func (m *Model[E]) Init() tea.Cmd {
	t := m.page.Controller.LoadFilters(m.cfg.InitialFilters)
	return tea.Batch(m.fetch(t), m.schedulePoll())
}

// Update implements tea.Model
func (m *Model[E]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchedMsg[E]:
		if msg.owner != m.id {
			return m, nil
		}
		if m.page.Controller.Apply(msg.result) && msg.names != nil {
			m.names = msg.names
		}
		m.clampCursor()
		return m, nil

	case mutatedMsg[E]:
		if msg.owner != m.id {
			return m, nil
		}
		out := m.page.Controller.SettleMutation(msg.result)
		m.clampCursor()
		if out.Notice != nil {
			owner := m.id
			return m, tea.Tick(time.Until(out.Notice.ExpiresAt), func(time.Time) tea.Msg {
				return redrawMsg{owner: owner}
			})
		}
		return m, nil

	case pollMsg:
		if msg.owner != m.id || msg.gen != m.pollGen {
			return m, nil
		}
		return m, tea.Batch(m.fetch(m.page.Controller.Refresh()), m.schedulePoll())

	case spinner.TickMsg:
		if msg.ID != m.spinner.ID() {
			return m, nil
		}
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case redrawMsg:
		return m, nil

	case tea.KeyMsg:
		m.hint = ""
		switch m.mode {
		case modeSearch:
			return m, m.updateSearch(msg)
		case modePrompt:
			return m, m.updatePrompt(msg)
		default:
			return m, m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model[E]) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	ctl := m.page.Controller
	v := ctl.View()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(v.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextPage):
		if v.ShowPagination && v.Page < v.PageCount {
			return m.changePage(v.Page + 1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if v.Page > 1 {
			return m.changePage(v.Page - 1)
		}
	case key.Matches(msg, m.keys.Search):
		if _, ok := m.Schema().Lookup("q"); !ok {
			return nil
		}
		m.mode = modeSearch
		m.input.Prompt = icons.Search.String() + " "
		m.input.Placeholder = "search"
		m.input.SetValue(ctl.Filters()["q"])
		return m.input.Focus()
	case key.Matches(msg, m.keys.Filter):
		return func() tea.Msg { return FilterRequestedMsg{} }
	case key.Matches(msg, m.keys.Clear):
		m.cursor = 0
		return m.fetch(ctl.ClearFilters())
	case key.Matches(msg, m.keys.Refresh):
		return m.fetch(ctl.Refresh())
	case key.Matches(msg, m.keys.Dismiss):
		ctl.DismissNotices()
	case key.Matches(msg, m.keys.Back):
		return func() tea.Msg { return BackMsg{} }
	default:
		return m.operate(msg.String(), v.Items)
	}
	return nil
}

func (m *Model[E]) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.input.Blur()
		return nil
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		m.input.SetValue("")
		return m.setFilter("q", "")
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return tea.Batch(cmd, m.setFilter("q", m.input.Value()))
}

func (m *Model[E]) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.endPrompt()
		return nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		op := m.prompted
		if op.InputRequired && value == "" {
			m.hint = op.Prompt + " is required"
			return nil
		}
		target := m.target
		m.endPrompt()
		return m.mutate(target, *op, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model[E]) endPrompt() {
	m.mode = modeBrowse
	m.prompted = nil
	m.input.Blur()
	m.input.SetValue("")
}

// operate runs the page operation bound to keyName on the selected row
func (m *Model[E]) operate(keyName string, items []E) tea.Cmd {
	op, ok := m.page.Operation(keyName)
	if !ok || len(items) == 0 {
		return nil
	}
	item := items[min(m.cursor, len(items)-1)]
	if op.Allowed != nil && !op.Allowed(item) {
		m.hint = fmt.Sprintf("%s is not available for %s %s", op.Label, strings.TrimSuffix(m.page.Name, "s"), item.EntityID())
		return nil
	}
	if op.Prompt != "" {
		m.mode = modePrompt
		m.prompted = &op
		m.target = item
		m.input.Prompt = op.Prompt + ": "
		m.input.Placeholder = ""
		m.input.SetValue("")
		return m.input.Focus()
	}
	return m.mutate(item, op, "")
}

func (m *Model[E]) mutate(item E, op pages.Operation[E], input string) tea.Cmd {
	ctl, owner := m.page.Controller, m.id
	p, err := ctl.Mutate(item.EntityID(), op.Intent(item, input))
	if err != nil {
		m.hint = fmt.Sprintf("%s: %v", op.Label, err)
		return nil
	}
	return tea.Batch(m.spin(), func() tea.Msg {
		return mutatedMsg[E]{owner: owner, result: ctl.Perform(context.Background(), p)}
	})
}

func (m *Model[E]) setFilter(name, value string) tea.Cmd {
	m.cursor = 0
	if t, ok := m.page.Controller.SetFilter(name, value); ok {
		return m.fetch(t)
	}
	return nil
}

func (m *Model[E]) changePage(page int) tea.Cmd {
	t, err := m.page.Controller.OnPageChange(page)
	if err != nil {
		m.hint = err.Error()
		return nil
	}
	m.cursor = 0
	return m.fetch(t)
}

// fetch loads t off the event loop; the result is applied in Update
func (m *Model[E]) fetch(t listctl.FetchTicket) tea.Cmd {
	ctl, owner, names := m.page.Controller, m.id, m.cfg.Names
	return tea.Batch(m.spin(), func() tea.Msg {
		ctx := context.Background()
		msg := fetchedMsg[E]{owner: owner, result: ctl.Load(ctx, t)}
		if names != nil && msg.result.Err == nil && len(msg.result.Page.Items) > 0 {
			msg.names = names(ctx)
		}
		return msg
	})
}

// schedulePoll arms the next poll tick for the current generation
func (m *Model[E]) schedulePoll() tea.Cmd {
	if m.cfg.PollInterval <= 0 {
		return nil
	}
	owner, gen := m.id, m.pollGen
	return tea.Tick(m.cfg.PollInterval, func(time.Time) tea.Msg {
		return pollMsg{owner: owner, gen: gen}
	})
}

// spin starts the spinner loop unless it is already running
func (m *Model[E]) spin() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model[E]) busy() bool {
	v := m.page.Controller.View()
	return v.Loading || len(v.InProgress) > 0
}

func (m *Model[E]) clampCursor() {
	n := len(m.page.Controller.View().Items)
	m.cursor = max(0, min(m.cursor, n-1))
}

// View implements tea.Model
func (m *Model[E]) View() string {
	v := m.page.Controller.View()
	var sb strings.Builder

	heading := styles.ValueStyle.Render(m.page.Title)
	if v.Filters != "" {
		heading += "  " + styles.Subtitle.Render(icons.Filter.String()+" "+v.Filters)
	}
	if v.Loading {
		heading += "  " + m.spinner.View()
	}
	sb.WriteString(heading + "\n\n")

	if v.Banner != "" {
		sb.WriteString(styles.Banner.Render(icons.Warning.String()+" "+v.Banner) + "\n\n")
	}

	switch {
	case v.Fatal != nil:
		sb.WriteString(styles.StatusCritical.Render("Error: "+v.Fatal.Error()) + "\n")
		sb.WriteString(styles.Help.Render("Press r to retry"))
	case !v.HasData:
		sb.WriteString(styles.Subtitle.Render("Loading " + strings.ToLower(m.page.Title) + "..."))
	case len(v.Items) == 0:
		sb.WriteString(pages.EmptyMessage(m.page.Name, v.Empty))
		if v.Empty == listctl.EmptyNoMatches {
			sb.WriteString(styles.Subtitle.Render(" (press c to clear filters)"))
		}
	default:
		sb.WriteString(m.renderTable(v) + "\n")
		sb.WriteString(styles.Subtitle.Render(m.footer(v)))
	}

	for _, n := range v.Notices {
		icon, style := icons.Info.String(), styles.StatusOK
		if n.Level == listctl.NoticeError {
			icon, style = icons.Critical.String(), styles.StatusCritical
		}
		sb.WriteString("\n" + style.Render(icon+" "+n.Text))
	}
	if m.hint != "" {
		sb.WriteString("\n" + styles.StatusWarning.Render(m.hint))
	}
	if m.mode != modeBrowse {
		sb.WriteString("\n\n" + m.input.View())
	}
	return sb.String()
}

func (m *Model[E]) footer(v listctl.ViewState[E]) string {
	if v.ShowPagination {
		return fmt.Sprintf("Page %d of %d (%d total)", v.Page, v.PageCount, v.Total)
	}
	return fmt.Sprintf("%d %s", v.Total, m.page.Name)
}

// visibleRows is how many table rows fit, or 0 when unbounded
func (m *Model[E]) visibleRows() int {
	if m.height <= 0 {
		return 0
	}
	return max(m.height-chrome, 3)
}

func (m *Model[E]) renderTable(v listctl.ViewState[E]) string {
	start, end := 0, len(v.Items)
	if n := m.visibleRows(); n > 0 && end > n {
		start = max(0, m.cursor-n+1)
		end = start + n
	}

	headers := []string{""}
	statusCols := map[int]bool{}
	for i, c := range m.page.Columns {
		headers = append(headers, c.Title)
		if c.Title == "STATUS" || c.Title == "SEVERITY" {
			statusCols[i+1] = true
		}
	}

	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		item := v.Items[i]
		marker := " "
		switch {
		case v.InProgress[item.EntityID()]:
			marker = m.spinner.View()
		case i == m.cursor:
			marker = "›"
		}
		rows = append(rows, append([]string{marker}, m.page.Row(item, m.names)...))
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.HeaderRow
			case start+row == m.cursor:
				return styles.SelectedRow
			case statusCols[col]:
				return styles.ForStatus(rows[row][col]).Padding(0, 1)
			default:
				return styles.Row
			}
		})
	if m.width > 0 {
		t = t.Width(m.width)
	}
	return t.Render()
}
