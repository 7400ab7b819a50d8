// ABOUTME: Alerts commands for the homelabcmd CLI
// ABOUTME: Lists alerts and moves them through acknowledge and resolve

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

var alertListFlags = newListFlags()

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List and manage alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts",
	Long: `List alerts one page at a time. Filters are sent to the backend.

Examples:
  homelabcmd alerts list --status open --severity critical
  homelabcmd alerts list --filter "status=open&page=2"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runAlertsList(ctx, os.Stdout))
	},
}

var alertsAckCmd = &cobra.Command{
	Use:     "ack <alert-id>",
	Aliases: []string{"acknowledge"},
	Short:   "Acknowledge an alert",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runAlertsAck(ctx, os.Stdout, args[0]))
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an alert",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runAlertsResolve(ctx, os.Stdout, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd, alertsAckCmd, alertsResolveCmd)

	f := alertsListCmd.Flags()
	f.StringVar(&alertListFlags.filter, "filter", "", `Filters as a query string, e.g. "status=open&severity=high"`)
	f.IntVar(&alertListFlags.page, "page", 1, "Page number")
	alertListFlags.keys["status"] = f.String("status", "", "Filter by status (open, acknowledged, resolved)")
	alertListFlags.keys["severity"] = f.String("severity", "", "Filter by severity (critical, high, medium, low)")
	alertListFlags.keys["server"] = f.String("server", "", "Filter by server id")
}

// runAlertsList lists alerts and returns exit code
func runAlertsList(ctx context.Context, w io.Writer) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	names := func() pages.Lookup { return serverNames(ctx, d) }
	return runListPage(ctx, w, pages.NewAlerts(d.client, d.opts), alertListFlags, names)
}

// runAlertsAck acknowledges an alert and returns exit code
func runAlertsAck(ctx context.Context, w io.Writer, id string) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return runMutation(ctx, w, d.client.GetAlert, id,
		pages.AcknowledgeIntent(d.client, time.Now), "Alert "+id+" acknowledged")
}

// runAlertsResolve resolves an alert and returns exit code
func runAlertsResolve(ctx context.Context, w io.Writer, id string) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return runMutation(ctx, w, d.client.GetAlert, id,
		pages.ResolveIntent(d.client, time.Now), "Alert "+id+" resolved")
}
