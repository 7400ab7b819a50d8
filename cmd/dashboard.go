// ABOUTME: Interactive terminal dashboard command
// ABOUTME: Logs to a file under the config directory while the TUI owns the screen

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/logger"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/session"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"tui", "ui"},
	Short:   "Open the interactive terminal dashboard",
	Long: `Open a full-screen dashboard with the fleet overview and every list page.

Lists refresh every poll interval. Filters chosen on each page are remembered
between runs. Logs go to debug.log in the config directory.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runDashboard(os.Stderr))
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard starts the TUI and returns exit code
func runDashboard(w io.Writer) int {
	cfg, err := GetConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	log, closer, err := logger.InitFile(cfg.Dir, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer closer.Close()

	d := newDepsWith(cfg, log)
	store, err := session.Open(cfg.Dir)
	if err != nil {
		// A broken session file only costs remembered filters
		log.Warn("Session unavailable", "error", err)
		store = nil
	}

	lookup := client.NewServerNames(d.client, cfg.LookupTTL)
	defer lookup.Close()

	log.Info("Starting dashboard", "api_url", cfg.APIURL)
	if err := tui.Run(tuiDeps(d, store, lookup)); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}
	return 0
}

func tuiDeps(d *deps, store *session.Store, lookup *client.ServerNames) tui.Deps {
	return tui.Deps{
		API:          d.client,
		Names:        lookupFunc(lookup),
		Options:      d.opts,
		Session:      store,
		PollInterval: d.cfg.PollInterval,
		Backend:      d.cfg.APIURL,
	}
}

// lookupFunc adapts the cached name lookup; failures show raw ids
func lookupFunc(lookup *client.ServerNames) func(context.Context) pages.Lookup {
	return func(ctx context.Context) pages.Lookup {
		names, err := lookup.Names(ctx)
		if err != nil {
			return nil
		}
		return names
	}
}
