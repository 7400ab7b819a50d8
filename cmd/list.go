// ABOUTME: Shared list rendering for the page commands
// ABOUTME: Merges --filter with per-key flags, loads one page and prints a table or JSON

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

// listFlags are the filter flags shared by every list command
type listFlags struct {
	filter string
	page   int
	keys   map[string]*string
}

func newListFlags() *listFlags {
	return &listFlags{keys: make(map[string]*string)}
}

// values returns the per-key flags that were set
func (f *listFlags) values() map[string]string {
	out := make(map[string]string, len(f.keys))
	for k, v := range f.keys {
		if v != nil && *v != "" {
			out[k] = *v
		}
	}
	return out
}

// mergeFilters applies per-key flags on top of the --filter query string. Values
// outside a key's closed set are rejected instead of silently dropped.
func mergeFilters(schema *listctl.Schema, raw string, flags map[string]string, page int) (string, error) {
	fs := schema.Parse(raw)
	for name, value := range flags {
		v, ok := schema.Normalize(name, value)
		if !ok {
			return "", fmt.Errorf("unknown filter %q", name)
		}
		if v == "" && strings.TrimSpace(value) != "" && !strings.EqualFold(strings.TrimSpace(value), listctl.AllValue) {
			key, _ := schema.Lookup(name)
			return "", fmt.Errorf("invalid %s %q (want one of %s)", name, value, strings.Join(key.Values, ", "))
		}
		if v == "" {
			delete(fs, name)
			continue
		}
		fs[name] = v
	}
	if page < 0 {
		return "", fmt.Errorf("--page must be >= 1, got %d", page)
	}
	if page > 1 {
		fs[listctl.PageKey] = strconv.Itoa(page)
	}
	return schema.Serialize(fs), nil
}

// listOutput is the JSON shape of a list command
type listOutput[E listctl.Entity] struct {
	Filters   string `json:"filters"`
	Page      int    `json:"page"`
	PageCount int    `json:"page_count"`
	Total     int    `json:"total"`
	Items     []E    `json:"items"`
	Stale     string `json:"stale,omitempty"`
}

// loadPage applies raw filters and performs one fetch. It fails only when nothing could be loaded.
func loadPage[E listctl.Entity](ctx context.Context, p *pages.Page[E], raw string) (listctl.ViewState[E], error) {
	ticket := p.Controller.LoadFilters(raw)
	p.Controller.Apply(p.Controller.Load(ctx, ticket))
	v := p.Controller.View()
	if v.Fatal != nil {
		return v, v.Fatal
	}
	return v, nil
}

// renderList prints a view as a table (or JSON) followed by pagination and filter lines
func renderList[E listctl.Entity](w io.Writer, p *pages.Page[E], v listctl.ViewState[E], names pages.Lookup, jsonOut bool) {
	if jsonOut {
		items := v.Items
		if items == nil {
			items = []E{}
		}
		data, _ := json.MarshalIndent(listOutput[E]{
			Filters:   v.Filters,
			Page:      v.Page,
			PageCount: v.PageCount,
			Total:     v.Total,
			Items:     items,
			Stale:     v.Banner,
		}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if v.Banner != "" {
		fmt.Fprintf(w, "Warning: %s\n", v.Banner)
	}
	if len(v.Items) == 0 {
		msg := pages.EmptyMessage(p.Name, v.Empty)
		if v.Empty == listctl.EmptyNoMatches {
			msg += " (clear filters with --filter '')"
		}
		fmt.Fprintln(w, msg)
		return
	}

	fmt.Fprintln(w, renderTable(p, v.Items, names))
	if v.ShowPagination {
		fmt.Fprintf(w, "Page %d of %d (%d total)\n", v.Page, v.PageCount, v.Total)
	} else {
		fmt.Fprintf(w, "%d %s\n", v.Total, p.Name)
	}
	if v.Filters != "" {
		fmt.Fprintf(w, "Filters: %s\n", v.Filters)
	}
}

func renderTable[E listctl.Entity](p *pages.Page[E], items []E, names pages.Lookup) string {
	headers := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		headers[i] = c.Title
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().PaddingRight(2)
		})
	for _, e := range items {
		t.Row(p.Row(e, names)...)
	}
	return t.Render()
}

// serverNames resolves server ids for rows that only carry ids. Lookup failures
// degrade to showing ids.
func serverNames(ctx context.Context, d *deps) pages.Lookup {
	lookup := client.NewServerNames(d.client, d.cfg.LookupTTL)
	defer lookup.Close()
	names, err := lookup.Names(ctx)
	if err != nil {
		return pages.Lookup{}
	}
	return names
}

// runListPage is the body of every "<page> list" command
func runListPage[E listctl.Entity](ctx context.Context, w io.Writer, p *pages.Page[E], f *listFlags, names func() pages.Lookup) int {
	raw, err := mergeFilters(p.Schema(), f.filter, f.values(), f.page)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	v, err := loadPage(ctx, p, raw)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	var lookup pages.Lookup
	if names != nil && len(v.Items) > 0 {
		lookup = names()
	}
	renderList(w, p, v, lookup, IsJSONOutput())
	return 0
}

// runMutation loads one entity, applies intent through a list controller and reports the outcome.
// A conflict is informational and exits 0.
func runMutation[E listctl.Entity](ctx context.Context, w io.Writer, get func(context.Context, string) (*E, error), id string, intent listctl.Intent[E], done string) int {
	ctl := listctl.New[E](listctl.FetchFunc[E](func(ctx context.Context, _ listctl.FilterSet, _ listctl.PageWindow) (listctl.Page[E], error) {
		e, err := get(ctx, id)
		if err != nil {
			return listctl.Page[E]{}, err
		}
		return listctl.Page[E]{Items: []E{*e}, Total: 1}, nil
	}), listctl.NewSchema(), listctl.WithPageSize[E](0), listctl.WithLabel[E](strings.ToLower(intent.Label)))

	if err := ctl.Reload(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	entityID := ctl.Snapshot().Items[0].EntityID()

	out, err := ctl.MutateSync(ctx, entityID, intent)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	message := done
	if out.Notice != nil {
		message = out.Notice.Text
	}
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"id":       entityID,
			"state":    out.State.String(),
			"conflict": out.Conflict,
			"message":  message,
		}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else if out.State == listctl.StateCommitted || out.Conflict {
		fmt.Fprintln(w, message)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}

	if out.State == listctl.StateCommitted || out.Conflict {
		return 0
	}
	return 2
}
