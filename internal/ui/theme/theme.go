package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the semantic color palette for the entire TUI.
type Theme struct {
	Base    lipgloss.Color
	Surface lipgloss.Color
	Overlay lipgloss.Color
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Subtext lipgloss.Color
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
	Income  lipgloss.Color
	Expense lipgloss.Color
}

// Default theme uses Charmbracelet's CharmTone palette from Crush.
var Default = Theme{
	Base:    lipgloss.Color("#201F26"), // Pepper
	Surface: lipgloss.Color("#2D2C35"), // BBQ
	Overlay: lipgloss.Color("#3A3943"), // Charcoal
	Border:  lipgloss.Color("#4D4C57"), // Iron
	Muted:   lipgloss.Color("#858392"), // Squid
	Text:    lipgloss.Color("#DFDBDD"), // Ash
	Subtext: lipgloss.Color("#BFBCC8"), // Smoke
	Primary: lipgloss.Color("#6B50FF"), // Charple
	Accent:  lipgloss.Color("#FF60FF"), // Dolly
	Success: lipgloss.Color("#00FFB2"), // Julep
	Warning: lipgloss.Color("#FFD300"),
	Error:   lipgloss.Color("#E94090"),
	Info:    lipgloss.Color("#00CED1"),
	Income:  lipgloss.Color("#00FFB2"),
	Expense: lipgloss.Color("#E94090"),
}
