// ABOUTME: Check command for the homelabcmd CLI
// ABOUTME: Validates fleet thresholds for scripts and cron jobs

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
	maxCritical int
	maxOffline  int
	maxPending  int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check fleet thresholds",
	Long: `Check fleet thresholds and exit non-zero if any are exceeded.

Exit codes:
  0 - All checks passed
  1 - One or more thresholds exceeded
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runCheck(ctx, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&maxCritical, "max-critical", 0, "Maximum open critical alerts")
	checkCmd.Flags().IntVar(&maxOffline, "max-offline", 0, "Maximum offline servers")
	checkCmd.Flags().IntVar(&maxPending, "max-pending", -1, "Maximum pending actions (-1 disables the check)")
}

// checkResult represents the result of a single threshold check
type checkResult struct {
	name      string
	value     int
	threshold int
	passed    bool
}

// runCheck executes the threshold checks and returns exit code
func runCheck(ctx context.Context, w io.Writer) int {
	if err := validateThresholds(maxCritical, maxOffline); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

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

	results := performChecks(summary)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatCheckJSON(results))
	} else {
		fmt.Fprintln(w, formatCheckHuman(results))
	}

	_, failed := countResults(results)
	if failed > 0 {
		return 1
	}
	return 0
}

// validateThresholds ensures threshold values are valid
func validateThresholds(critical, offline int) error {
	if critical < 0 {
		return fmt.Errorf("--max-critical must be >= 0")
	}
	if offline < 0 {
		return fmt.Errorf("--max-offline must be >= 0")
	}
	return nil
}

// performChecks runs all threshold checks against the fleet summary
func performChecks(s *pages.Summary) []checkResult {
	results := []checkResult{
		{
			name:      "Critical alerts",
			value:     s.Critical(),
			threshold: maxCritical,
			passed:    s.Critical() <= maxCritical,
		},
		{
			name:      "Offline servers",
			value:     s.Offline(),
			threshold: maxOffline,
			passed:    s.Offline() <= maxOffline,
		},
	}
	if maxPending >= 0 {
		results = append(results, checkResult{
			name:      "Pending actions",
			value:     s.PendingActions,
			threshold: maxPending,
			passed:    s.PendingActions <= maxPending,
		})
	}
	return results
}

// countResults returns the count of passed and failed checks
func countResults(results []checkResult) (passed, failed int) {
	for _, r := range results {
		if r.passed {
			passed++
		} else {
			failed++
		}
	}
	return
}

// formatCheckHuman formats check results for human readability
func formatCheckHuman(results []checkResult) string {
	var output string

	for _, r := range results {
		symbol := "✓"
		if !r.passed {
			symbol = "✗"
		}
		output += fmt.Sprintf("%s %s: %d (max: %d)\n", symbol, r.name, r.value, r.threshold)
	}

	passed, failed := countResults(results)
	if failed > 0 {
		output += fmt.Sprintf("\nFAILED: %d check(s) exceeded threshold", failed)
	} else {
		output += fmt.Sprintf("\nPASSED: All %d check(s) within thresholds", passed)
	}

	return output
}

// formatCheckJSON formats check results as JSON
func formatCheckJSON(results []checkResult) string {
	_, failed := countResults(results)

	checks := make([]map[string]interface{}, len(results))
	for i, r := range results {
		checks[i] = map[string]interface{}{
			"name":      r.name,
			"value":     r.value,
			"threshold": r.threshold,
			"passed":    r.passed,
		}
	}

	status := "passed"
	if failed > 0 {
		status = "failed"
	}

	output := map[string]interface{}{
		"status": status,
		"checks": checks,
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
