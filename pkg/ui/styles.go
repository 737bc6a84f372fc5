package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/suiteview/pkg/model"
)

// Palette. Adaptive colors keep the dashboard readable on light
// terminals too.
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
	ColorSubtext   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorHighlight = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	ColorBgBar     = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#1F2937"}
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtext).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	SelectedRowStyle = lipgloss.NewStyle().
				Background(ColorPrimary).
				Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111827"}).
				Bold(true)
)

// EntityIcon returns a compact glyph for an entity kind.
func EntityIcon(t model.EntityType) string {
	switch t {
	case model.TypeClient:
		return "◆"
	case model.TypeSite:
		return "⌂"
	case model.TypeSupply:
		return "⚡"
	case model.TypeMeter:
		return "◉"
	case model.TypeChannel:
		return "≈"
	case model.TypeItem:
		return "▣"
	case model.TypeRetailer:
		return "▤"
	case model.TypeAccountGroup:
		return "▦"
	case model.TypeAccount:
		return "▥"
	case model.TypeStatement:
		return "≡"
	case model.TypeInvoice:
		return "□"
	case model.TypeSection:
		return "§"
	default:
		return "•"
	}
}

// StatusColor maps a record status onto the palette.
func StatusColor(status string) lipgloss.AdaptiveColor {
	switch strings.ToLower(status) {
	case "active":
		return ColorSecondary
	case "inactive":
		return ColorSubtext
	case "pending":
		return ColorHighlight
	case "error":
		return ColorDanger
	default:
		return ColorPrimary
	}
}
