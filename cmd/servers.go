// ABOUTME: Servers commands for the homelabcmd CLI
// ABOUTME: Lists the server inventory and queues service restarts

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

var serverListFlags = newListFlags()

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List and manage monitored servers",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List servers",
	Long: `List monitored servers. Filters are applied locally after fetching the full inventory.

Examples:
  homelabcmd servers list --status offline
  homelabcmd servers list --filter "type=vm&q=media"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runServersList(ctx, os.Stdout))
	},
}

var serversRestartCmd = &cobra.Command{
	Use:   "restart <server-id> <service>",
	Short: "Queue a service restart",
	Long: `Queue a restart of a systemd service on a server. The restart is created as a
remediation action; if one is already pending the command reports it and exits 0.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runServersRestart(ctx, os.Stdout, args[0], args[1]))
	},
}

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.AddCommand(serversListCmd, serversRestartCmd)

	f := serversListCmd.Flags()
	f.StringVar(&serverListFlags.filter, "filter", "", `Filters as a query string, e.g. "status=offline&type=vm"`)
	serverListFlags.keys["status"] = f.String("status", "", "Filter by status (online, offline, warning, unknown)")
	serverListFlags.keys["type"] = f.String("type", "", "Filter by machine type (physical, vm, container, nas)")
	serverListFlags.keys["q"] = f.String("q", "", "Search hostname, display name or IP")
}

// runServersList lists servers and returns exit code
func runServersList(ctx context.Context, w io.Writer) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return runListPage(ctx, w, pages.NewServers(d.client, d.opts), serverListFlags, nil)
}

// runServersRestart queues a restart and returns exit code
func runServersRestart(ctx context.Context, w io.Writer, serverID, service string) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return runMutation(ctx, w, d.client.GetServer, serverID,
		pages.RestartIntent(d.client, service),
		fmt.Sprintf("Restart of %s queued on %s", service, serverID))
}
