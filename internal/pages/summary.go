// ABOUTME: Fleet summary across servers, alerts, actions and costs
// ABOUTME: Fetches each source concurrently with errgroup

package pages

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
)

// SummaryAPI is the slice of the backend a fleet summary needs
type SummaryAPI interface {
	ListServers(ctx context.Context, params client.ListParams) (*client.ListResponse[client.Server], error)
	ListAlerts(ctx context.Context, params client.ListParams) (*client.ListResponse[client.Alert], error)
	ListActions(ctx context.Context, params client.ListParams) (*client.ListResponse[client.Action], error)
	ListCosts(ctx context.Context, params client.ListParams) (*client.ListResponse[client.CostEntry], error)
}

// Summary is the fleet overview shown by the status command and the dashboard
type Summary struct {
	Servers          int            `json:"servers"`
	ServersByStatus  map[string]int `json:"servers_by_status"`
	OpenAlerts       int            `json:"open_alerts"`
	AlertsBySeverity map[string]int `json:"alerts_by_severity"`
	PendingActions   int            `json:"pending_actions"`
	TotalWatts       int            `json:"total_watts"`
	MonthlyCost      float64        `json:"monthly_cost"`
	// Averages cover servers that are not offline.
	AvgCPU    float64 `json:"avg_cpu_percent"`
	AvgMemory float64 `json:"avg_memory_percent"`
	AvgDisk   float64 `json:"avg_disk_percent"`
}

// Offline returns the number of offline servers
func (s *Summary) Offline() int {
	return s.ServersByStatus[client.ServerOffline]
}

// Critical returns the number of open critical alerts
func (s *Summary) Critical() int {
	return s.AlertsBySeverity[client.SeverityCritical]
}

// Summarize fetches every source in parallel. The first failure cancels the rest.
func Summarize(ctx context.Context, api SummaryAPI) (*Summary, error) {
	var (
		servers *client.ListResponse[client.Server]
		alerts  *client.ListResponse[client.Alert]
		actions *client.ListResponse[client.Action]
		costs   *client.ListResponse[client.CostEntry]
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		servers, err = api.ListServers(ctx, client.ListParams{})
		return wrap("servers", err)
	})
	g.Go(func() (err error) {
		alerts, err = api.ListAlerts(ctx, client.ListParams{Filters: map[string]string{"status": client.AlertOpen}})
		return wrap("alerts", err)
	})
	g.Go(func() (err error) {
		actions, err = api.ListActions(ctx, client.ListParams{Filters: map[string]string{"status": client.ActionPending}})
		return wrap("actions", err)
	})
	g.Go(func() (err error) {
		costs, err = api.ListCosts(ctx, client.ListParams{})
		return wrap("costs", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Summary{
		Servers:          servers.Total,
		ServersByStatus:  make(map[string]int),
		OpenAlerts:       alerts.Total,
		AlertsBySeverity: make(map[string]int),
		PendingActions:   actions.Total,
		MonthlyCost:      TotalMonthlyCost(costs.Items),
	}
	reporting := 0
	for _, srv := range servers.Items {
		s.ServersByStatus[srv.Status]++
		if srv.Status == client.ServerOffline {
			continue
		}
		reporting++
		s.AvgCPU += srv.CPUPercent
		s.AvgMemory += srv.MemoryPercent
		s.AvgDisk += srv.DiskPercent
	}
	if reporting > 0 {
		s.AvgCPU /= float64(reporting)
		s.AvgMemory /= float64(reporting)
		s.AvgDisk /= float64(reporting)
	}
	for _, a := range alerts.Items {
		s.AlertsBySeverity[a.Severity]++
	}
	for _, c := range costs.Items {
		s.TotalWatts += c.TDPWatts
	}
	return s, nil
}

func wrap(source string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", source, err)
	}
	return nil
}
