// ABOUTME: Status command for the homelabcmd CLI
// ABOUTME: Shows a fleet summary of servers, open alerts, pending actions and power cost

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fleet status",
	Long:  `Display a summary of servers by status, open alerts by severity, pending actions and estimated power cost.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runStatus(ctx, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// runStatus fetches the summary and returns exit code
func runStatus(ctx context.Context, w io.Writer) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	summary, err := pages.Summarize(ctx, d.client)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(summary))
	} else {
		fmt.Fprintln(w, formatStatusHuman(summary))
	}
	return 0
}

// formatStatusHuman formats the summary for human readability
func formatStatusHuman(s *pages.Summary) string {
	if s.Servers == 0 {
		return "No servers registered yet.\nInstall the agent on a host or run \"homelabcmd discovery start <subnet>\"."
	}

	return fmt.Sprintf(`Fleet:           %s
Servers:         %d (%d online, %d warning, %d offline)
Open alerts:     %d (%d critical, %d high, %d medium, %d low)
Pending actions: %d
Power:           %dW, %s per month`,
		fleetStatus(s),
		s.Servers,
		s.ServersByStatus[client.ServerOnline],
		s.ServersByStatus[client.ServerWarning],
		s.Offline(),
		s.OpenAlerts,
		s.Critical(),
		s.AlertsBySeverity[client.SeverityHigh],
		s.AlertsBySeverity[client.SeverityMedium],
		s.AlertsBySeverity[client.SeverityLow],
		s.PendingActions,
		s.TotalWatts, pages.FormatCost(s.MonthlyCost))
}

// formatStatusJSON formats the summary as JSON
func formatStatusJSON(s *pages.Summary) string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}

// fleetStatus returns ok/warning/critical for the fleet as a whole
func fleetStatus(s *pages.Summary) string {
	if s.Critical() > 0 || s.Offline() > 0 {
		return "critical"
	}
	if s.OpenAlerts > 0 || s.ServersByStatus[client.ServerWarning] > 0 {
		return "warning"
	}
	return "ok"
}
