// ABOUTME: Filter editor for list screens as a bubbletea model
// ABOUTME: Builds a huh form from a page's filter schema: selects for closed sets, inputs for text

package filterform

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
)

// AppliedMsg carries the filters chosen in the form
type AppliedMsg struct {
	Filters listctl.FilterSet
}

// CancelledMsg is sent when the form is dismissed without applying
type CancelledMsg struct{}

// Form edits the filters of one list
type Form struct {
	schema *listctl.Schema
	keys   []string
	values map[string]*string
	form   *huh.Form
	width  int
}

// labels gives friendlier titles for the common keys
var labels = map[string]string{
	"q":        "Search",
	"status":   "Status",
	"severity": "Severity",
	"server":   "Server ID",
	"type":     "Machine type",
}

// createTheme returns the huh theme matching the TUI palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	sky := lipgloss.Color("#0EA5E9")
	skyLight := lipgloss.Color("#38BDF8")
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(sky).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(sky)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(skyLight).
		Bold(true)
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(sky).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(sky).
		Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(sky)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")

	return t
}

// New builds a form for every schema key except the page, prefilled from current
func New(title string, schema *listctl.Schema, current listctl.FilterSet) *Form {
	f := &Form{
		schema: schema,
		values: make(map[string]*string),
	}

	var fields []huh.Field
	for _, name := range schema.Keys() {
		if name == listctl.PageKey {
			continue
		}
		key, _ := schema.Lookup(name)
		value := current[name]
		f.keys = append(f.keys, name)
		f.values[name] = &value
		fields = append(fields, field(key, f.values[name]))
	}

	f.form = huh.NewForm(
		huh.NewGroup(fields...).
			Title("Filter " + strings.ToLower(title)).
			Description("Enter to apply, Esc to cancel"),
	).WithTheme(createTheme()).WithShowHelp(false)
	return f
}

func field(key listctl.Key, value *string) huh.Field {
	label := labels[key.Name]
	if label == "" {
		label = key.Name
	}

	if len(key.Values) == 0 {
		return huh.NewInput().
			Title(label).
			Placeholder("any").
			CharLimit(128).
			Value(value)
	}

	if *value == "" {
		*value = listctl.AllValue
	}
	opts := []huh.Option[string]{huh.NewOption("All", listctl.AllValue)}
	for _, v := range key.Values {
		opts = append(opts, huh.NewOption(v, v))
	}
	return huh.NewSelect[string]().
		Title(label).
		Options(opts...).
		Value(value)
}

// Filters returns the normalized form values. "all" and blank values are dropped.
func (f *Form) Filters() listctl.FilterSet {
	out := listctl.FilterSet{}
	for _, name := range f.keys {
		if v, ok := f.schema.Normalize(name, *f.values[name]); ok && v != "" {
			out[name] = v
		}
	}
	return out
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) {
	f.width = width
	f.form = f.form.WithWidth(width)
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return f, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}
	if f.form.State == huh.StateCompleted {
		filters := f.Filters()
		return f, func() tea.Msg { return AppliedMsg{Filters: filters} }
	}
	return f, cmd
}

// View implements tea.Model
func (f *Form) View() string {
	return f.form.View()
}
