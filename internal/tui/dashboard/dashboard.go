// ABOUTME: Fleet dashboard showing the summary across servers, alerts, actions and costs
// ABOUTME: Renders metric blocks and keeps a short history of problem counts for sparklines

package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/icons"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/styles"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/widgets"
)

// HistorySize is how many refreshes the sparklines remember
const HistorySize = 24

// Dashboard displays the fleet summary
type Dashboard struct {
	summary *pages.Summary
	err     error
	updated time.Time
	width   int
	height  int

	alertHistory   []float64
	offlineHistory []float64
}

// New creates an empty dashboard
func New(width, height int) *Dashboard {
	return &Dashboard{width: width, height: height}
}

// Update records a fresh summary
func (d *Dashboard) Update(s *pages.Summary, at time.Time) {
	d.summary = s
	d.err = nil
	d.updated = at
	d.alertHistory = push(d.alertHistory, float64(s.OpenAlerts))
	d.offlineHistory = push(d.offlineHistory, float64(s.Offline()))
}

// Fail records a failed refresh. The previous summary stays on screen.
func (d *Dashboard) Fail(err error) {
	d.err = err
}

// Summary returns the last good summary, or nil
func (d *Dashboard) Summary() *pages.Summary {
	return d.summary
}

// UpdatedAt returns when the summary was last refreshed
func (d *Dashboard) UpdatedAt() time.Time {
	return d.updated
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func push(history []float64, v float64) []float64 {
	history = append(history, v)
	if len(history) > HistorySize {
		history = history[len(history)-HistorySize:]
	}
	return history
}

// previous returns the value before the latest one, or the latest when there is none
func previous(history []float64) float64 {
	if len(history) < 2 {
		return history[len(history)-1]
	}
	return history[len(history)-2]
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.summary == nil {
		if d.err != nil {
			return styles.StatusCritical.Render("Error: "+d.err.Error()) + "\n" + styles.Help.Render("Press r to retry")
		}
		return styles.Subtitle.Render("Loading fleet summary...")
	}

	s := d.summary
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Fleet.String() + " Fleet overview"))
	sb.WriteString("\n")
	if d.err != nil {
		sb.WriteString(styles.Banner.Render(icons.Warning.String()+" Unable to refresh: "+d.err.Error()) + "\n\n")
	}

	if s.Servers == 0 {
		sb.WriteString("No servers registered yet.\n")
		sb.WriteString(styles.Subtitle.Render("Install the agent on a host or start a network discovery."))
		return d.fit(sb.String())
	}

	config := widgets.DefaultMetricBlockConfig()
	online := s.ServersByStatus[client.ServerOnline]

	counts := lipgloss.JoinHorizontal(lipgloss.Top,
		widgets.MetricBlockWithSparkline(icons.Server, "Servers",
			fmt.Sprintf("%d/%d", online, s.Servers), d.offlineHistory,
			fmt.Sprintf("%d offline", s.Offline()), config),
		" ",
		widgets.MetricBlockWithSparkline(icons.Alert, "Alerts",
			fmt.Sprintf("%d", s.OpenAlerts), d.alertHistory,
			fmt.Sprintf("%d critical", s.Critical()), config),
		" ",
		widgets.CountBlock(icons.Action, "Actions", s.PendingActions, "pending approval", config),
		" ",
		widgets.MetricBlock(icons.Cost, "Power",
			pages.FormatCost(s.MonthlyCost)+"/mo", humanize.Comma(int64(s.TotalWatts))+" W", config),
	)

	reporting := s.Servers - s.Offline()
	details := fmt.Sprintf("avg of %d servers", reporting)
	usage := lipgloss.JoinHorizontal(lipgloss.Top,
		widgets.MetricBlockWithBar(icons.Server, "CPU", s.AvgCPU, details, config),
		" ",
		widgets.MetricBlockWithBar(icons.Server, "Memory", s.AvgMemory, details, config),
		" ",
		widgets.MetricBlockWithBar(icons.Server, "Disk", s.AvgDisk, details, config),
	)

	sb.WriteString(counts + "\n" + usage + "\n\n")
	sb.WriteString(d.statusLine())
	return d.fit(sb.String())
}

// statusLine summarizes fleet health and alert severities in one line
func (d *Dashboard) statusLine() string {
	s := d.summary
	level := widgets.StatusOK
	label := "All systems healthy"
	switch {
	case s.Critical() > 0 || s.Offline() > 0:
		level, label = widgets.StatusCritical, "Attention needed"
	case s.OpenAlerts > 0 || s.ServersByStatus[client.ServerWarning] > 0:
		level, label = widgets.StatusWarning, "Degraded"
	}

	parts := []string{
		widgets.StatusBadge(level),
		widgets.StatusText(label, level),
		widgets.TrendIndicator(d.alertHistory[len(d.alertHistory)-1], previous(d.alertHistory)),
	}
	for _, sev := range client.AlertSeverities {
		if n := s.AlertsBySeverity[sev]; n > 0 {
			parts = append(parts, widgets.Badge(fmt.Sprintf("%d %s", n, strings.ToUpper(sev)), widgets.LevelForSeverity(sev)))
		}
	}
	return strings.Join(parts, " ")
}

func (d *Dashboard) fit(content string) string {
	style := lipgloss.NewStyle()
	if d.width > 0 {
		style = style.Width(d.width)
	}
	if d.height > 0 {
		style = style.MaxHeight(d.height)
	}
	return style.Render(content)
}
