// ABOUTME: Remediation actions page binding
// ABOUTME: Server-side filtered, paged actions with approve and reject operations

package pages

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
)

// ActionAPI is the slice of the backend the actions page needs
type ActionAPI interface {
	ListActions(ctx context.Context, params client.ListParams) (*client.ListResponse[client.Action], error)
	ApproveAction(ctx context.Context, id string) (*client.Action, error)
	RejectAction(ctx context.Context, id, reason string) (*client.Action, error)
}

// ActionSchema filters actions on the backend
func ActionSchema() *listctl.Schema {
	return listctl.NewSchema(
		listctl.Key{Name: "status", Values: client.ActionStatuses},
		listctl.Key{Name: "server"},
	)
}

// NewActions binds the actions page
func NewActions(api ActionAPI, o Options) *Page[client.Action] {
	schema := ActionSchema()
	opts := append(controllerOptions[client.Action](ActionsPage, o, true),
		listctl.WithMatcher[client.Action]("status", func(a client.Action, v string) bool {
			return strings.EqualFold(a.Status, v)
		}),
		listctl.WithMatcher[client.Action]("server", func(a client.Action, v string) bool {
			return a.ServerID == v
		}),
	)

	pending := func(a client.Action) bool { return a.Status == client.ActionPending }
	return &Page[client.Action]{
		Name:       ActionsPage,
		Title:      "Actions",
		Controller: listctl.New[client.Action](listFetcher(api.ListActions), schema, opts...),
		Columns: []Column{
			{Title: "ID", Width: 6},
			{Title: "STATUS", Width: 10},
			{Title: "SERVER", Width: 18},
			{Title: "ACTION", Width: 16},
			{Title: "SERVICE", Width: 16},
			{Title: "CREATED", Width: 16},
		},
		Row: actionRow,
		Operations: []Operation[client.Action]{
			{
				Key:     "a",
				Label:   "Approve",
				Allowed: pending,
				Intent:  func(client.Action, string) listctl.Intent[client.Action] { return ApproveIntent(api, o.now) },
			},
			{
				Key:     "x",
				Label:   "Reject",
				Prompt:  "Reason (optional)",
				Allowed: pending,
				Intent: func(_ client.Action, reason string) listctl.Intent[client.Action] {
					return RejectIntent(api, reason, o.now)
				},
			},
		},
		schema: schema,
	}
}

// ApproveIntent approves a pending action
func ApproveIntent(api ActionAPI, now func() time.Time) listctl.Intent[client.Action] {
	return listctl.Intent[client.Action]{
		Label: "Approve",
		Patch: func(a client.Action) client.Action {
			t := now()
			a.Status = client.ActionApproved
			a.ApprovedAt = &t
			return a
		},
		Call: api.ApproveAction,
	}
}

// RejectIntent rejects a pending action with an optional reason
func RejectIntent(api ActionAPI, reason string, now func() time.Time) listctl.Intent[client.Action] {
	return listctl.Intent[client.Action]{
		Label: "Reject",
		Patch: func(a client.Action) client.Action {
			t := now()
			a.Status = client.ActionRejected
			a.RejectedAt = &t
			a.Reason = reason
			return a
		},
		Call: func(ctx context.Context, id string) (*client.Action, error) {
			return api.RejectAction(ctx, id, reason)
		},
	}
}

func actionRow(a client.Action, names Lookup) []string {
	created := ""
	if !a.CreatedAt.IsZero() {
		created = humanize.Time(a.CreatedAt)
	}
	return []string{a.EntityID(), a.Status, names.Server(a.ServerID), a.ActionType, a.ServiceName, created}
}
