// ABOUTME: Discovery commands for the homelabcmd CLI
// ABOUTME: Starts network discovery and tracks the active session between invocations

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/session"
)

var discoveryCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Discover hosts on the network",
}

var discoveryStartCmd = &cobra.Command{
	Use:   "start <subnet>",
	Short: "Start a discovery of a subnet",
	Long: `Start network discovery of a subnet (CIDR). The session is remembered, so
"homelabcmd discovery status" reports on it later.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runDiscoveryStart(ctx, os.Stdout, args[0]))
	},
}

var discoveryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active discovery",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runDiscoveryStatus(ctx, os.Stdout))
	},
}

var discoveryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the active discovery",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runDiscoveryClear(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(discoveryCmd)
	discoveryCmd.AddCommand(discoveryStartCmd, discoveryStatusCmd, discoveryClearCmd)
}

// runDiscoveryStart starts a discovery and records it in the session
func runDiscoveryStart(ctx context.Context, w io.Writer, subnet string) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	store, err := session.Open(d.cfg.Dir)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if active, ok := store.Active(); ok {
		fmt.Fprintf(w, "Error: discovery %d of %s is still active (run \"homelabcmd discovery clear\" first)\n", active.ID, active.Subnet)
		return 2
	}

	disc, err := d.client.StartDiscovery(ctx, subnet)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	started := time.Now()
	if disc.StartedAt != nil {
		started = *disc.StartedAt
	}
	if err := store.Begin(session.Discovery{ID: disc.ID, Subnet: disc.Subnet, StartedAt: started}); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatDiscoveryJSON(disc))
	} else {
		fmt.Fprintf(w, "Discovery %d started for %s\n", disc.ID, disc.Subnet)
	}
	return 0
}

// runDiscoveryStatus reports on the active discovery. A finished discovery ends the session.
func runDiscoveryStatus(ctx context.Context, w io.Writer) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	store, err := session.Open(d.cfg.Dir)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	active, ok := store.Active()
	if !ok {
		fmt.Fprintln(w, "No active discovery.")
		if recent := store.RecentSubnets(); len(recent) > 0 {
			fmt.Fprintf(w, "Recent subnets: %s\n", strings.Join(recent, ", "))
		}
		return 0
	}

	disc, err := d.client.GetDiscovery(ctx, active.ID)
	if err != nil {
		if client.IsNotFound(err) {
			store.End()
			fmt.Fprintf(w, "Discovery %d no longer exists on the backend; session cleared.\n", active.ID)
			return 0
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if disc.Status != client.DiscoveryRunning {
		if err := store.End(); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatDiscoveryJSON(disc))
	} else {
		fmt.Fprintln(w, formatDiscoveryHuman(disc, active.StartedAt))
	}
	if disc.Status == client.DiscoveryFailed {
		return 2
	}
	return 0
}

// runDiscoveryClear forgets the active discovery
func runDiscoveryClear(w io.Writer) int {
	cfg, err := GetConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	store, err := session.Open(cfg.Dir)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := store.End(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintln(w, "Discovery session cleared.")
	return 0
}

// formatDiscoveryHuman formats a discovery for human readability
func formatDiscoveryHuman(disc *client.Discovery, started time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Discovery %d: %s\n", disc.ID, disc.Subnet)
	fmt.Fprintf(&b, "Status:    %s (%d%%)\n", disc.Status, disc.Progress)
	fmt.Fprintf(&b, "Started:   %s", humanize.Time(started))
	if disc.Error != "" {
		fmt.Fprintf(&b, "\nError:     %s", disc.Error)
	}
	if len(disc.Devices) > 0 {
		fmt.Fprintf(&b, "\n\nFound %d device(s):", len(disc.Devices))
		for _, dev := range disc.Devices {
			ssh := "no ssh"
			if dev.SSHReachable {
				ssh = "ssh"
			}
			host := dev.Hostname
			if host == "" {
				host = "-"
			}
			fmt.Fprintf(&b, "\n  %-15s  %-24s  %5.1fms  %s", dev.IP, host, dev.ResponseTime, ssh)
		}
	}
	return b.String()
}

// formatDiscoveryJSON formats a discovery as JSON
func formatDiscoveryJSON(disc *client.Discovery) string {
	data, _ := json.MarshalIndent(disc, "", "  ")
	return string(data)
}
