// ABOUTME: Progress bars for utilisation and completion displays
// ABOUTME: Threshold-aware bar for percentages and a compact bar for tight spaces

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width         int
	WarnThreshold float64 // Percentage where warning zone starts (default 80)
	CritThreshold float64 // Percentage where critical zone starts (default 95)
	OKColor       lipgloss.Color
	WarnColor     lipgloss.Color
	CritColor     lipgloss.Color
	EmptyColor    lipgloss.Color
}

// DefaultProgressBarConfig returns the usual 80/95 thresholds
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:         20,
		WarnThreshold: 80,
		CritThreshold: 95,
		OKColor:       BadgeOKBg,
		WarnColor:     BadgeWarnBg,
		CritColor:     BadgeCritBg,
		EmptyColor:    lipgloss.Color("#374151"),
	}
}

func clampPercent(p float64) float64 {
	return min(max(p, 0), 100)
}

// ProgressBar renders a bar whose filled cells take the color of the zone they fall in
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	percent = clampPercent(percent)

	filled := int(percent / 100.0 * float64(config.Width))
	warnPos := int(config.WarnThreshold / 100.0 * float64(config.Width))
	critPos := int(config.CritThreshold / 100.0 * float64(config.Width))

	var bar strings.Builder
	bar.WriteString("[")
	for i := range config.Width {
		color := config.EmptyColor
		char := "░"
		if i < filled {
			char = "█"
			switch {
			case i >= critPos:
				color = config.CritColor
			case i >= warnPos:
				color = config.WarnColor
			default:
				color = config.OKColor
			}
		}
		bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(char))
	}
	bar.WriteString("]")
	return bar.String()
}

// ProgressBarWithLabel renders the bar followed by the percentage
func ProgressBarWithLabel(percent float64, config ProgressBarConfig) string {
	color := config.OKColor
	switch StatusFromPercent(percent, config.WarnThreshold, config.CritThreshold) {
	case StatusCritical:
		color = config.CritColor
	case StatusWarning:
		color = config.WarnColor
	}
	label := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%3.0f%%", percent))
	return ProgressBar(percent, config) + " " + label
}

// CompactProgressBar renders a minimal bar without brackets
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	filled := int(clampPercent(percent) / 100.0 * float64(width))

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", width-filled))
}
