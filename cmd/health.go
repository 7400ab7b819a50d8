// ABOUTME: Health command for the homelabcmd CLI
// ABOUTME: Checks backend connectivity and service status

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the HomelabCmd backend and verify service status.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runHealth(ctx, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	url := d.cfg.APIURL

	resp, err := d.client.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(url, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(url, resp))
	}
	return 0
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *client.HealthResponse) string {
	uptime := "unknown"
	if resp.Uptime > 0 {
		uptime = humanize.RelTime(time.Now().Add(-time.Duration(resp.Uptime)*time.Second), time.Now(), "", "")
	}
	return fmt.Sprintf(`Backend:  %s
Status:   %s
Version:  %s
Database: %s
Uptime:   %s`, url, resp.Status, resp.Version, resp.Database, uptime)
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *client.HealthResponse) string {
	output := map[string]interface{}{
		"backend":        url,
		"status":         resp.Status,
		"version":        resp.Version,
		"database":       resp.Database,
		"uptime_seconds": resp.Uptime,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
