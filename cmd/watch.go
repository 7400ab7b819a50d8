// ABOUTME: Watch command for the homelabcmd CLI
// ABOUTME: Re-renders a list every poll interval until interrupted

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

var (
	watchFilter   string
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:       "watch <servers|alerts|actions|scans|costs>",
	Short:     "Refresh a list on an interval",
	Long:      `Print a list and refresh it every poll interval until interrupted. A failed refresh keeps the last good list and prints a warning.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: pages.Names,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runWatch(ctx, os.Stdout, args[0], watchFilter, watchInterval))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchFilter, "filter", "", `Filters as a query string, e.g. "status=open"`)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Refresh interval (default: HOMELABCMD_POLL_INTERVAL)")
}

// runWatch polls page until ctx is canceled and returns exit code
func runWatch(ctx context.Context, w io.Writer, page, filter string, interval time.Duration) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if interval <= 0 {
		interval = d.cfg.PollInterval
	}

	render, err := watcher(ctx, d, page, filter)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	var mu sync.Mutex
	tick := func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "--- %s at %s ---\n", page, time.Now().Format("15:04:05"))
		render(ctx, w)
	}

	tick(ctx)
	poller := listctl.Poll(ctx, interval, tick)
	<-ctx.Done()
	poller.Stop()
	return 0
}

// watcher builds the refresh-and-render function for a page name
func watcher(ctx context.Context, d *deps, page, filter string) (func(context.Context, io.Writer), error) {
	names := func() pages.Lookup { return serverNames(ctx, d) }
	switch strings.ToLower(page) {
	case pages.ServersPage:
		return watchPage(pages.NewServers(d.client, d.opts), filter, nil)
	case pages.AlertsPage:
		return watchPage(pages.NewAlerts(d.client, d.opts), filter, names)
	case pages.ActionsPage:
		return watchPage(pages.NewActions(d.client, d.opts), filter, names)
	case pages.ScansPage:
		return watchPage(pages.NewScans(d.client, d.opts), filter, nil)
	case pages.CostsPage:
		return watchPage(pages.NewCosts(d.client, d.opts), filter, nil)
	default:
		return nil, fmt.Errorf("unknown page %q (want one of %s)", page, strings.Join(pages.Names, ", "))
	}
}

func watchPage[E listctl.Entity](p *pages.Page[E], filter string, names func() pages.Lookup) (func(context.Context, io.Writer), error) {
	raw, err := mergeFilters(p.Schema(), filter, nil, 1)
	if err != nil {
		return nil, err
	}
	p.Controller.LoadFilters(raw)

	return func(ctx context.Context, w io.Writer) {
		ticket := p.Controller.Refresh()
		p.Controller.Apply(p.Controller.Load(ctx, ticket))
		if ctx.Err() != nil {
			return
		}
		v := p.Controller.View()
		if v.Fatal != nil {
			fmt.Fprintf(w, "Error: %v (retrying)\n", v.Fatal)
			return
		}
		var lookup pages.Lookup
		if names != nil && len(v.Items) > 0 {
			lookup = names()
		}
		renderList(w, p, v, lookup, IsJSONOutput())
	}, nil
}
