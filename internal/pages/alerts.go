// ABOUTME: Alerts page binding
// ABOUTME: Server-side filtered, paged alerts with acknowledge and resolve operations

package pages

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
)

// AlertAPI is the slice of the backend the alerts page needs
type AlertAPI interface {
	ListAlerts(ctx context.Context, params client.ListParams) (*client.ListResponse[client.Alert], error)
	AcknowledgeAlert(ctx context.Context, id string) (*client.Alert, error)
	ResolveAlert(ctx context.Context, id string) (*client.Alert, error)
}

// AlertSchema filters alerts on the backend
func AlertSchema() *listctl.Schema {
	return listctl.NewSchema(
		listctl.Key{Name: "status", Values: client.AlertStatuses},
		listctl.Key{Name: "severity", Values: client.AlertSeverities},
		listctl.Key{Name: "server"},
	)
}

// NewAlerts binds the alerts page. The matchers mirror the backend filters so an
// alert acknowledged locally leaves an open-only view right away.
func NewAlerts(api AlertAPI, o Options) *Page[client.Alert] {
	schema := AlertSchema()
	opts := append(controllerOptions[client.Alert](AlertsPage, o, true),
		listctl.WithMatcher[client.Alert]("status", func(a client.Alert, v string) bool {
			return strings.EqualFold(a.Status, v)
		}),
		listctl.WithMatcher[client.Alert]("severity", func(a client.Alert, v string) bool {
			return strings.EqualFold(a.Severity, v)
		}),
		listctl.WithMatcher[client.Alert]("server", func(a client.Alert, v string) bool {
			return a.ServerID == v
		}),
	)

	return &Page[client.Alert]{
		Name:       AlertsPage,
		Title:      "Alerts",
		Controller: listctl.New[client.Alert](listFetcher(api.ListAlerts), schema, opts...),
		Columns: []Column{
			{Title: "ID", Width: 6},
			{Title: "SEVERITY", Width: 9},
			{Title: "STATUS", Width: 13},
			{Title: "SERVER", Width: 18},
			{Title: "TITLE", Width: 32},
			{Title: "RAISED", Width: 16},
		},
		Row: alertRow,
		Operations: []Operation[client.Alert]{
			{
				Key:     "a",
				Label:   "Acknowledge",
				Allowed: func(a client.Alert) bool { return a.Status == client.AlertOpen },
				Intent:  func(client.Alert, string) listctl.Intent[client.Alert] { return AcknowledgeIntent(api, o.now) },
			},
			{
				Key:     "x",
				Label:   "Resolve",
				Allowed: func(a client.Alert) bool { return a.Status != client.AlertResolved },
				Intent:  func(client.Alert, string) listctl.Intent[client.Alert] { return ResolveIntent(api, o.now) },
			},
		},
		schema: schema,
	}
}

// AcknowledgeIntent marks an alert acknowledged locally, then on the backend
func AcknowledgeIntent(api AlertAPI, now func() time.Time) listctl.Intent[client.Alert] {
	return listctl.Intent[client.Alert]{
		Label: "Acknowledge",
		Patch: func(a client.Alert) client.Alert {
			t := now()
			a.Status = client.AlertAcknowledged
			a.AcknowledgedAt = &t
			return a
		},
		Call: api.AcknowledgeAlert,
	}
}

// ResolveIntent marks an alert resolved locally, then on the backend
func ResolveIntent(api AlertAPI, now func() time.Time) listctl.Intent[client.Alert] {
	return listctl.Intent[client.Alert]{
		Label: "Resolve",
		Patch: func(a client.Alert) client.Alert {
			t := now()
			a.Status = client.AlertResolved
			a.ResolvedAt = &t
			return a
		},
		Call: api.ResolveAlert,
	}
}

func alertRow(a client.Alert, names Lookup) []string {
	server := a.ServerName
	if server == "" {
		server = names.Server(a.ServerID)
	}
	raised := ""
	if !a.CreatedAt.IsZero() {
		raised = humanize.Time(a.CreatedAt)
	}
	return []string{a.EntityID(), a.Severity, a.Status, server, a.Title, raised}
}
