package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/railorder/internal/domain"
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

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// VariantBadge returns a colored indicator for an item's variant state.
func VariantBadge(item *domain.OrderItem) string {
	if item.VariantType == domain.VariantProductive {
		return StyleGreen.Render("● PRODUCTIVE")
	}
	switch item.MergeStatus {
	case domain.MergeApplied:
		return StyleDim.Render("● SIM (applied)")
	case domain.MergeProposed:
		return StylePurple.Render("● SIM (proposed)")
	default:
		return StyleYellow.Render("● SIMULATION")
	}
}

// StatusColor returns the style for an order status.
func StatusColor(status domain.OrderStatus) lipgloss.Style {
	switch status {
	case domain.OrderActive:
		return StyleGreen
	case domain.OrderDraft:
		return StyleYellow
	case domain.OrderClosed:
		return StyleBlue
	default:
		return StyleDim
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
