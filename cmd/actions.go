// ABOUTME: Actions commands for the homelabcmd CLI
// ABOUTME: Lists remediation actions and approves or rejects pending ones

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

var (
	actionListFlags = newListFlags()
	rejectReason    string
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List and approve remediation actions",
}

var actionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remediation actions",
	Long: `List remediation actions one page at a time. Filters are sent to the backend.

Example:
  homelabcmd actions list --status pending`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runActionsList(ctx, os.Stdout))
	},
}

var actionsApproveCmd = &cobra.Command{
	Use:   "approve <action-id>",
	Short: "Approve a pending action",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runActionsApprove(ctx, os.Stdout, args[0]))
	},
}

var actionsRejectCmd = &cobra.Command{
	Use:   "reject <action-id>",
	Short: "Reject a pending action",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runActionsReject(ctx, os.Stdout, args[0], rejectReason))
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.AddCommand(actionsListCmd, actionsApproveCmd, actionsRejectCmd)

	f := actionsListCmd.Flags()
	f.StringVar(&actionListFlags.filter, "filter", "", `Filters as a query string, e.g. "status=pending"`)
	f.IntVar(&actionListFlags.page, "page", 1, "Page number")
	actionListFlags.keys["status"] = f.String("status", "", "Filter by status (pending, approved, executing, completed, failed, rejected)")
	actionListFlags.keys["server"] = f.String("server", "", "Filter by server id")

	actionsRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Reason recorded with the rejection")
}

// runActionsList lists actions and returns exit code
func runActionsList(ctx context.Context, w io.Writer) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	names := func() pages.Lookup { return serverNames(ctx, d) }
	return runListPage(ctx, w, pages.NewActions(d.client, d.opts), actionListFlags, names)
}

// runActionsApprove approves an action and returns exit code
func runActionsApprove(ctx context.Context, w io.Writer, id string) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return runMutation(ctx, w, d.client.GetAction, id,
		pages.ApproveIntent(d.client, time.Now), "Action "+id+" approved")
}

// runActionsReject rejects an action and returns exit code
func runActionsReject(ctx context.Context, w io.Writer, id, reason string) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return runMutation(ctx, w, d.client.GetAction, id,
		pages.RejectIntent(d.client, reason, time.Now), "Action "+id+" rejected")
}
