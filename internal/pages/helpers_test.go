// ABOUTME: In-memory backend for page binding tests
// ABOUTME: Applies status filters and page windows the way the real API does

package pages

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testOptions() Options {
	return Options{PageSize: 20, Now: func() time.Time { return fixedNow }}
}

type fakeAPI struct {
	mu sync.Mutex

	servers []client.Server
	alerts  []client.Alert
	actions []client.Action
	scans   []client.Scan
	costs   []client.CostEntry

	params map[string][]client.ListParams

	listErr    error
	ackErr     error
	resolveErr error
	approveErr error
	rejectErr  error
	restartErr error

	rejectReason string
	restarted    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{params: make(map[string][]client.ListParams)}
}

func (f *fakeAPI) record(name string, p client.ListParams) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params[name] = append(f.params[name], p)
}

func (f *fakeAPI) last(name string) client.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.params[name]
	return calls[len(calls)-1]
}

// window filters by status and slices the page the way the backend does
func window[T any](items []T, status func(T) string, p client.ListParams) *client.ListResponse[T] {
	var matched []T
	for _, it := range items {
		if want := p.Filters["status"]; want != "" && !strings.EqualFold(status(it), want) {
			continue
		}
		matched = append(matched, it)
	}
	total := len(matched)
	if p.Limit > 0 {
		start := min(p.Offset, total)
		end := min(start+p.Limit, total)
		matched = matched[start:end]
	}
	return &client.ListResponse[T]{Items: matched, Total: total}
}

func (f *fakeAPI) ListServers(_ context.Context, p client.ListParams) (*client.ListResponse[client.Server], error) {
	f.record("servers", p)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return window(f.servers, func(s client.Server) string { return s.Status }, p), nil
}

func (f *fakeAPI) ListAlerts(_ context.Context, p client.ListParams) (*client.ListResponse[client.Alert], error) {
	f.record("alerts", p)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return window(f.alerts, func(a client.Alert) string { return a.Status }, p), nil
}

func (f *fakeAPI) ListActions(_ context.Context, p client.ListParams) (*client.ListResponse[client.Action], error) {
	f.record("actions", p)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return window(f.actions, func(a client.Action) string { return a.Status }, p), nil
}

func (f *fakeAPI) ListScans(_ context.Context, p client.ListParams) (*client.ListResponse[client.Scan], error) {
	f.record("scans", p)
	return window(f.scans, func(s client.Scan) string { return s.Status }, p), nil
}

func (f *fakeAPI) ListCosts(_ context.Context, p client.ListParams) (*client.ListResponse[client.CostEntry], error) {
	f.record("costs", p)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return window(f.costs, func(client.CostEntry) string { return "" }, p), nil
}

func (f *fakeAPI) AcknowledgeAlert(_ context.Context, id string) (*client.Alert, error) {
	if f.ackErr != nil {
		return nil, f.ackErr
	}
	for _, a := range f.alerts {
		if a.EntityID() == id {
			a.Status = client.AlertAcknowledged
			return &a, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404}
}

func (f *fakeAPI) ResolveAlert(context.Context, string) (*client.Alert, error) {
	return nil, f.resolveErr
}

func (f *fakeAPI) ApproveAction(context.Context, string) (*client.Action, error) {
	return nil, f.approveErr
}

func (f *fakeAPI) RejectAction(_ context.Context, _ string, reason string) (*client.Action, error) {
	f.rejectReason = reason
	return nil, f.rejectErr
}

func (f *fakeAPI) RestartService(_ context.Context, serverID, service string) (*client.Action, error) {
	if f.restartErr != nil {
		return nil, f.restartErr
	}
	f.restarted = append(f.restarted, serverID+"/"+service)
	return &client.Action{ID: 1, ServerID: serverID, ServiceName: service, Status: client.ActionPending}, nil
}

func makeAlerts(n int, status string) []client.Alert {
	out := make([]client.Alert, n)
	for i := range out {
		out[i] = client.Alert{
			ID:       i + 1,
			ServerID: "srv-1",
			Severity: client.SeverityHigh,
			Status:   status,
			Title:    fmt.Sprintf("alert %d", i+1),
		}
	}
	return out
}
