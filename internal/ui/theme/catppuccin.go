package theme

import (
	"github.com/charmbracelet/lipgloss"

	recorddto "studyhub/internal/modules/record/dto"
)

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Good  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Bad   = lipgloss.NewStyle().Foreground(Red)
)

// palette maps the named tokens a category may carry to mocha hex values.
var palette = map[string]lipgloss.Color{
	"rosewater": "#f5e0dc",
	"flamingo":  "#f2cdcd",
	"pink":      "#f5c2e7",
	"mauve":     "#cba6f7",
	"red":       Red,
	"maroon":    "#eba0ac",
	"peach":     Peach,
	"yellow":    "#f9e2af",
	"green":     Green,
	"teal":      "#94e2d5",
	"sky":       "#89dceb",
	"sapphire":  Sapphire,
	"blue":      "#89b4fa",
	"lavender":  Lavender,
}

// Swatch resolves a category color. Unknown tokens fall back to Text.
func Swatch(c recorddto.Color) lipgloss.Color {
	switch c.Kind() {
	case recorddto.ColorHex:
		return lipgloss.Color(c.Value())
	case recorddto.ColorNamed:
		if v, ok := palette[c.Value()]; ok {
			return v
		}
	}
	return Text
}
