// ABOUTME: Binds the generic list controller to each HomelabCmd page
// ABOUTME: Shared page type, options, table columns and empty-state wording

package pages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
)

// Page names
const (
	ServersPage = "servers"
	AlertsPage  = "alerts"
	ActionsPage = "actions"
	ScansPage   = "scans"
	CostsPage   = "costs"
)

// Names lists every page in menu order
var Names = []string{ServersPage, AlertsPage, ActionsPage, ScansPage, CostsPage}

// Options tune every page controller
type Options struct {
	PageSize  int
	NoticeTTL time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// controllerOptions translates Options; paged=false fetches the whole list
func controllerOptions[E listctl.Entity](label string, o Options, paged bool) []listctl.Option[E] {
	opts := []listctl.Option[E]{listctl.WithLabel[E](label)}
	switch {
	case !paged:
		opts = append(opts, listctl.WithPageSize[E](0))
	case o.PageSize > 0:
		opts = append(opts, listctl.WithPageSize[E](o.PageSize))
	}
	if o.NoticeTTL > 0 {
		opts = append(opts, listctl.WithNoticeTTL[E](o.NoticeTTL))
	}
	if o.Logger != nil {
		opts = append(opts, listctl.WithLogger[E](o.Logger))
	}
	if o.Now != nil {
		opts = append(opts, listctl.WithClock[E](o.Now))
	}
	return opts
}

// Column is one table column
type Column struct {
	Title string
	Width int
}

// Lookup resolves server ids to names for display
type Lookup map[string]string

// Server returns the name of id, or id when unknown
func (l Lookup) Server(id string) string {
	if name, ok := l[id]; ok && name != "" {
		return name
	}
	return id
}

// Operation is a keyed row mutation offered by a page
type Operation[E listctl.Entity] struct {
	Key   string
	Label string
	// Prompt asks for free text before the operation runs, e.g. a service name.
	Prompt string
	// InputRequired rejects an empty answer to Prompt.
	InputRequired bool
	// Allowed reports whether the operation applies to the entity in its current state.
	Allowed func(E) bool
	Intent  func(e E, input string) listctl.Intent[E]
}

// Page is a list controller plus everything needed to present it
type Page[E listctl.Entity] struct {
	Name       string
	Title      string
	Controller *listctl.Controller[E]
	Columns    []Column
	Row        func(e E, names Lookup) []string
	Operations []Operation[E]

	schema *listctl.Schema
}

// Schema returns the filter keys the page understands
func (p *Page[E]) Schema() *listctl.Schema {
	return p.schema
}

// Operation finds the operation bound to key
func (p *Page[E]) Operation(key string) (Operation[E], bool) {
	for _, op := range p.Operations {
		if op.Key == key {
			return op, true
		}
	}
	return Operation[E]{}, false
}

// EmptyMessage is the text shown for an empty list
func EmptyMessage(noun string, kind listctl.EmptyKind) string {
	switch kind {
	case listctl.EmptyNoMatches:
		return fmt.Sprintf("No %s match the current filters", noun)
	case listctl.EmptyNothingYet:
		return fmt.Sprintf("No %s yet.", noun)
	default:
		return ""
	}
}

// listFetcher adapts a client list endpoint to a controller fetcher
func listFetcher[E listctl.Entity](list func(context.Context, client.ListParams) (*client.ListResponse[E], error)) listctl.Fetcher[E] {
	return listctl.FetchFunc[E](func(ctx context.Context, filters listctl.FilterSet, w listctl.PageWindow) (listctl.Page[E], error) {
		resp, err := list(ctx, client.ListParams{Filters: filters, Limit: w.Limit, Offset: w.Offset})
		if err != nil {
			return listctl.Page[E]{}, err
		}
		return listctl.Page[E]{Items: resp.Items, Total: resp.Total}, nil
	})
}

// containsFold reports whether any field contains the search text, ignoring case
func containsFold(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
