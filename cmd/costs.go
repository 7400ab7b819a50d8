// ABOUTME: Costs command for the homelabcmd CLI
// ABOUTME: Shows the estimated power cost per server, sortable client-side

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

var (
	costSearch string
	costSort   string
	costDesc   bool
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Show estimated power costs",
	Long: `Show the estimated daily and monthly power cost of each server.

Examples:
  homelabcmd costs --sort cost --desc
  homelabcmd costs --q nas`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runCosts(ctx, os.Stdout, costSearch, costSort, costDesc))
	},
}

func init() {
	rootCmd.AddCommand(costsCmd)
	costsCmd.Flags().StringVar(&costSearch, "q", "", "Search hostname or category")
	costsCmd.Flags().StringVar(&costSort, "sort", pages.SortByCost, "Sort by cost, watts or name")
	costsCmd.Flags().BoolVar(&costDesc, "desc", false, "Sort descending")
}

// runCosts prints the cost breakdown and returns exit code
func runCosts(ctx context.Context, w io.Writer, search, sortKey string, desc bool) int {
	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	p := pages.NewCosts(d.client, d.opts)
	raw, err := mergeFilters(p.Schema(), "", map[string]string{"q": search}, 1)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	v, err := loadPage(ctx, p, raw)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	v.Items, err = pages.SortCosts(v.Items, sortKey, desc)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		items := v.Items
		if items == nil {
			items = []client.CostEntry{}
		}
		data, _ := json.MarshalIndent(map[string]interface{}{
			"items":        items,
			"monthly_cost": pages.TotalMonthlyCost(v.Items),
		}, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	renderList(w, p, v, nil, false)
	if len(v.Items) > 0 {
		fmt.Fprintf(w, "Total monthly cost: %s\n", pages.FormatCost(pages.TotalMonthlyCost(v.Items)))
	}
	return 0
}
