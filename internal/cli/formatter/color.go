// Package formatter renders projects, task trees and summaries for the
// terminal with lipgloss.
package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// RiskIndicator returns a colored risk label such as "● CRITICAL".
func RiskIndicator(risk domain.RiskLevel) string {
	switch risk {
	case domain.RiskCritical:
		return StyleRed.Render("● CRITICAL")
	case domain.RiskAtRisk:
		return StyleYellow.Render("● AT RISK")
	case domain.RiskOnTrack:
		return StyleGreen.Render("● ON TRACK")
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}

// StatusPill renders a task status with its color.
func StatusPill(status domain.Status) string {
	switch status {
	case domain.StatusCompleted:
		return StyleGreen.Render(string(status))
	case domain.StatusInProgress:
		return StyleYellow.Render(string(status))
	case domain.StatusOnHold:
		return StylePurple.Render(string(status))
	default:
		return StyleDim.Render(string(status))
	}
}

// GapStyled renders a schedule gap, red when behind.
func GapStyled(gap int) string {
	text := fmt.Sprintf("%+d", gap)
	switch {
	case gap < 0:
		return StyleRed.Render(text)
	case gap > 0:
		return StyleGreen.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// TruncID shortens a uuid to its first eight characters.
func TruncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
