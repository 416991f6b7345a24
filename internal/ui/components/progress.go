package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/farefit/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label string
	// Value and Max are shown as "value/max" after the bar.
	Value int
	Max   int
	Width int
	// Fill overrides the bar color.
	Fill color.Color
}

// NewProgressBar creates a progress bar for value out of total.
func NewProgressBar(label string, value, total, width int) ProgressBar {
	return ProgressBar{
		Label: label,
		Value: value,
		Max:   total,
		Width: width,
	}
}

// Percent is the filled fraction in [0, 1].
func (p ProgressBar) Percent() float64 {
	if p.Max <= 0 {
		return 0
	}
	f := float64(p.Value) / float64(p.Max)
	return min(max(f, 0), 1)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("%-14s", p.Label)) + "  "
	}

	counter := fmt.Sprintf("  %d/%d", p.Value, p.Max)
	barWidth := p.Width - lipgloss.Width(result) - len(counter)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent())
	empty := barWidth - filled

	fill := theme.ProgressFilled
	if p.Fill != nil {
		fill = fill.Background(p.Fill)
	}

	result += fill.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(counter)

	return result
}
