// ABOUTME: Servers page binding
// ABOUTME: Unpaged list filtered locally by search text, status and machine type

package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
)

// ServerAPI is the slice of the backend the servers page needs
type ServerAPI interface {
	ListServers(ctx context.Context, params client.ListParams) (*client.ListResponse[client.Server], error)
	RestartService(ctx context.Context, serverID, service string) (*client.Action, error)
}

// ServerSchema filters servers client-side only
func ServerSchema() *listctl.Schema {
	return listctl.NewSchema(
		listctl.Key{Name: "q", Local: true},
		listctl.Key{Name: "status", Values: client.ServerStatuses, Local: true},
		listctl.Key{Name: "type", Values: client.ServerTypes, Local: true},
	)
}

// NewServers binds the servers page
func NewServers(api ServerAPI, o Options) *Page[client.Server] {
	schema := ServerSchema()
	opts := append(controllerOptions[client.Server](ServersPage, o, false),
		listctl.WithMatcher[client.Server]("q", func(s client.Server, v string) bool {
			return containsFold(v, s.ID, s.Hostname, s.DisplayName, s.IPAddress)
		}),
		listctl.WithMatcher[client.Server]("status", func(s client.Server, v string) bool {
			return strings.EqualFold(s.Status, v)
		}),
		listctl.WithMatcher[client.Server]("type", func(s client.Server, v string) bool {
			return strings.EqualFold(s.Type, v)
		}),
	)

	return &Page[client.Server]{
		Name:       ServersPage,
		Title:      "Servers",
		Controller: listctl.New[client.Server](listFetcher(api.ListServers), schema, opts...),
		Columns: []Column{
			{Title: "ID", Width: 14},
			{Title: "NAME", Width: 20},
			{Title: "STATUS", Width: 9},
			{Title: "TYPE", Width: 10},
			{Title: "CPU", Width: 5},
			{Title: "MEM", Width: 5},
			{Title: "DISK", Width: 5},
			{Title: "LAST SEEN", Width: 16},
		},
		Row: serverRow,
		Operations: []Operation[client.Server]{
			{
				Key:           "R",
				Label:         "Restart service",
				Prompt:        "Service name",
				InputRequired: true,
				Allowed:       func(s client.Server) bool { return s.Status != client.ServerOffline },
				Intent: func(_ client.Server, service string) listctl.Intent[client.Server] {
					return RestartIntent(api, service)
				},
			},
		},
		schema: schema,
	}
}

// RestartIntent queues a restart of service. The server row itself is left untouched.
func RestartIntent(api ServerAPI, service string) listctl.Intent[client.Server] {
	return listctl.Intent[client.Server]{
		Label:        "Restart",
		ConflictText: fmt.Sprintf("Restart already pending for %s", service),
		Call: func(ctx context.Context, id string) (*client.Server, error) {
			_, err := api.RestartService(ctx, id, service)
			return nil, err
		},
	}
}

func serverRow(s client.Server, _ Lookup) []string {
	lastSeen := "never"
	if s.LastSeen != nil {
		lastSeen = humanize.Time(*s.LastSeen)
	}
	status := s.Status
	if s.Paused {
		status += " (paused)"
	}
	return []string{
		s.ID,
		s.Name(),
		status,
		s.Type,
		percent(s.CPUPercent),
		percent(s.MemoryPercent),
		percent(s.DiskPercent),
		lastSeen,
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
