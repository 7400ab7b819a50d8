// ABOUTME: Power costs page binding
// ABOUTME: Unpaged cost breakdown with local search and client-side sorting

package pages

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/listctl"
)

// Cost sort keys
const (
	SortByCost  = "cost"
	SortByWatts = "watts"
	SortByName  = "name"
)

// CostSortKeys lists the accepted sort keys
var CostSortKeys = []string{SortByCost, SortByWatts, SortByName}

// CostAPI is the slice of the backend the costs page needs
type CostAPI interface {
	ListCosts(ctx context.Context, params client.ListParams) (*client.ListResponse[client.CostEntry], error)
}

// CostSchema filters costs client-side by search text
func CostSchema() *listctl.Schema {
	return listctl.NewSchema(listctl.Key{Name: "q", Local: true})
}

// NewCosts binds the costs page
func NewCosts(api CostAPI, o Options) *Page[client.CostEntry] {
	schema := CostSchema()
	opts := append(controllerOptions[client.CostEntry](CostsPage, o, false),
		listctl.WithMatcher[client.CostEntry]("q", func(c client.CostEntry, v string) bool {
			return containsFold(v, c.ServerID, c.Hostname, c.MachineCategory)
		}),
	)

	return &Page[client.CostEntry]{
		Name:       CostsPage,
		Title:      "Costs",
		Controller: listctl.New[client.CostEntry](listFetcher(api.ListCosts), schema, opts...),
		Columns: []Column{
			{Title: "SERVER", Width: 22},
			{Title: "CATEGORY", Width: 14},
			{Title: "WATTS", Width: 6},
			{Title: "DAILY", Width: 9},
			{Title: "MONTHLY", Width: 10},
		},
		Row:    costRow,
		schema: schema,
	}
}

// SortCosts returns a sorted copy of items. Ties keep their original order.
func SortCosts(items []client.CostEntry, key string, desc bool) ([]client.CostEntry, error) {
	var compare func(a, b client.CostEntry) int
	switch strings.ToLower(key) {
	case SortByCost, "":
		compare = func(a, b client.CostEntry) int { return cmp.Compare(a.EstimatedMonthlyCost, b.EstimatedMonthlyCost) }
	case SortByWatts:
		compare = func(a, b client.CostEntry) int { return cmp.Compare(a.TDPWatts, b.TDPWatts) }
	case SortByName:
		compare = func(a, b client.CostEntry) int {
			return cmp.Compare(strings.ToLower(a.Hostname), strings.ToLower(b.Hostname))
		}
	default:
		return nil, fmt.Errorf("%w: unknown sort key %q (want one of %s)",
			listctl.ErrInvalidArgument, key, strings.Join(CostSortKeys, ", "))
	}

	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b client.CostEntry) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out, nil
}

// TotalMonthlyCost sums the monthly estimate of items
func TotalMonthlyCost(items []client.CostEntry) float64 {
	var total float64
	for _, c := range items {
		total += c.EstimatedMonthlyCost
	}
	return total
}

// FormatCost renders an amount with thousands separators and two decimals
func FormatCost(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func costRow(c client.CostEntry, _ Lookup) []string {
	name := c.Hostname
	if name == "" {
		name = c.ServerID
	}
	return []string{
		name,
		c.MachineCategory,
		fmt.Sprint(c.TDPWatts),
		FormatCost(c.EstimatedDailyCost),
		FormatCost(c.EstimatedMonthlyCost),
	}
}
