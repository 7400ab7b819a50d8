// ABOUTME: Compact metric block widget for the fleet dashboard
// ABOUTME: Frames a titled value with an optional bar or sparkline underneath

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/tui/icons"
)

// defaultBlockWidth fits four blocks side by side in a 100-column terminal
const defaultBlockWidth = 24

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns the dashboard palette
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       defaultBlockWidth,
		BorderColor: BadgeNeutralBg,
		TitleColor:  lipgloss.Color("#0EA5E9"),
		ValueColor:  lipgloss.Color("#F9FAFB"),
	}
}

func (c MetricBlockConfig) normalized() MetricBlockConfig {
	if c.Width <= 0 {
		c.Width = defaultBlockWidth
	}
	return c
}

// inner is the usable width between "│  " and "│"
func (c MetricBlockConfig) inner() int {
	return c.Width - 4
}

// frame draws the titled box around pre-rendered body lines
func frame(icon icons.Icon, title string, body []string, c MetricBlockConfig) string {
	inner := c.inner()
	label := truncate(fmt.Sprintf("%s %s", icon.String(), title), inner-1)
	border := lipgloss.NewStyle().Foreground(c.BorderColor)

	lines := make([]string, 0, len(body)+2)
	lines = append(lines, border.Render("┌─ ")+
		lipgloss.NewStyle().Foreground(c.TitleColor).Render(label)+
		border.Render(" "+strings.Repeat("─", max(0, inner-lipgloss.Width(label)-1))+"┐"))
	for _, l := range body {
		pad := max(0, inner-lipgloss.Width(l))
		lines = append(lines, border.Render("│  ")+l+strings.Repeat(" ", pad)+border.Render("│"))
	}
	lines = append(lines, border.Render("└"+strings.Repeat("─", c.Width-2)+"┘"))
	return strings.Join(lines, "\n")
}

func muted(s string) string {
	return lipgloss.NewStyle().Foreground(BadgeNeutralBg).Render(s)
}

// MetricBlock renders a value with a muted subtitle
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	c := config.normalized()
	valueStyle := lipgloss.NewStyle().Foreground(c.ValueColor).Bold(true)
	return frame(icon, title, []string{
		valueStyle.Render(truncate(value, c.inner())),
		muted(truncate(subtitle, c.inner())),
	}, c)
}

// CountBlock renders a simple count metric such as the number of servers
func CountBlock(icon icons.Icon, title string, count int, label string, config MetricBlockConfig) string {
	return MetricBlock(icon, title, fmt.Sprintf("%d", count), label, config)
}

// MetricBlockWithBar renders a utilisation percentage, its status and a bar
func MetricBlockWithBar(icon icons.Icon, title string, percent float64, details string, config MetricBlockConfig) string {
	c := config.normalized()

	level := StatusFromPercent(percent, 80, 95)
	color, _ := colors(level)
	mark := map[StatusLevel]string{StatusOK: "✓", StatusWarning: "⚠", StatusCritical: "✗"}[level]

	status := lipgloss.NewStyle().Foreground(color)
	value := status.Bold(true).Render(fmt.Sprintf("%3.0f%%", percent)) + " " + status.Render(mark)

	return frame(icon, title, []string{
		value,
		CompactProgressBar(percent, c.inner()-2, color),
		muted(truncate(details, c.inner())),
	}, c)
}

// MetricBlockWithSparkline renders a value followed by its recent history
func MetricBlockWithSparkline(icon icons.Icon, title, value string, history []float64, subtitle string, config MetricBlockConfig) string {
	c := config.normalized()
	valueStyle := lipgloss.NewStyle().Foreground(c.ValueColor).Bold(true)
	sparkWidth := min(8, max(0, c.inner()-lipgloss.Width(value)-2))

	return frame(icon, title, []string{
		valueStyle.Render(value) + "  " + Sparkline(history, sparkWidth, c.TitleColor),
		muted(truncate(subtitle, c.inner())),
	}, c)
}

// truncate shortens a string to maxLen with ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(0, maxLen)])
	}
	return string(r[:maxLen-3]) + "..."
}
