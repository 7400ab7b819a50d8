// ABOUTME: Scans commands for the homelabcmd CLI
// ABOUTME: Lists ad-hoc scans and starts new ones

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

var (
	scanListFlags = newListFlags()
	fullScan      bool
)

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "List and start ad-hoc scans",
}

var scansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scans",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runScansList(ctx, os.Stdout))
	},
}

var scansStartCmd = &cobra.Command{
	Use:   "start <hostname>",
	Short: "Start a scan of a host",
	Long:  `Start a quick scan (or a full scan with --full) of a host over SSH.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runScansStart(ctx, os.Stdout, args[0], fullScan))
	},
}

func init() {
	rootCmd.AddCommand(scansCmd)
	scansCmd.AddCommand(scansListCmd, scansStartCmd)

	f := scansListCmd.Flags()
	f.StringVar(&scanListFlags.filter, "filter", "", `Filters as a query string, e.g. "status=running"`)
	f.IntVar(&scanListFlags.page, "page", 1, "Page number")
	scanListFlags.keys["status"] = f.String("status", "", "Filter by status (pending, running, completed, failed)")
	scanListFlags.keys["server"] = f.String("server", "", "Filter by server id")

	scansStartCmd.Flags().BoolVar(&fullScan, "full", false, "Run a full scan instead of a quick one")
}

// runScansList lists scans and returns exit code
func runScansList(ctx context.Context, w io.Writer) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return runListPage(ctx, w, pages.NewScans(d.client, d.opts), scanListFlags, nil)
}

// runScansStart triggers a scan and returns exit code
func runScansStart(ctx context.Context, w io.Writer, hostname string, full bool) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	scanType := "quick"
	if full {
		scanType = "full"
	}
	scan, err := d.client.TriggerScan(ctx, hostname, scanType)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(scan, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Started %s scan %d of %s (%s)\n", scan.ScanType, scan.ID, scan.Hostname, scan.Status)
	}
	return 0
}
