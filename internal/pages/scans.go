// ABOUTME: Scans page binding
// ABOUTME: Server-side filtered, paged list of ad-hoc scans

package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
)

// ScanAPI is the slice of the backend the scans page needs
type ScanAPI interface {
	ListScans(ctx context.Context, params client.ListParams) (*client.ListResponse[client.Scan], error)
}

// ScanSchema filters scans on the backend
func ScanSchema() *listctl.Schema {
	return listctl.NewSchema(
		listctl.Key{Name: "status", Values: client.ScanStatuses},
		listctl.Key{Name: "server"},
	)
}

// NewScans binds the scans page. Scans are started, never edited, so it has no operations.
func NewScans(api ScanAPI, o Options) *Page[client.Scan] {
	schema := ScanSchema()
	opts := append(controllerOptions[client.Scan](ScansPage, o, true),
		listctl.WithMatcher[client.Scan]("status", func(s client.Scan, v string) bool {
			return strings.EqualFold(s.Status, v)
		}),
	)

	return &Page[client.Scan]{
		Name:       ScansPage,
		Title:      "Scans",
		Controller: listctl.New[client.Scan](listFetcher(api.ListScans), schema, opts...),
		Columns: []Column{
			{Title: "ID", Width: 6},
			{Title: "HOST", Width: 22},
			{Title: "TYPE", Width: 6},
			{Title: "STATUS", Width: 10},
			{Title: "PROGRESS", Width: 9},
			{Title: "STARTED", Width: 16},
		},
		Row:    scanRow,
		schema: schema,
	}
}

func scanRow(s client.Scan, _ Lookup) []string {
	started := ""
	if s.StartedAt != nil {
		started = humanize.Time(*s.StartedAt)
	}
	progress := fmt.Sprintf("%d%%", s.Progress)
	if s.Status == client.ScanFailed && s.Error != "" {
		progress = "error"
	}
	return []string{s.EntityID(), s.Hostname, s.ScanType, s.Status, progress, started}
}
