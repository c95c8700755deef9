package theme

import "github.com/charmbracelet/lipgloss"

const (
	Light = "light"
	Dark  = "dark"
)

// Palette is one catppuccin flavour.
type Palette struct {
	Base     lipgloss.Color
	Mantle   lipgloss.Color
	Surface1 lipgloss.Color
	Text     lipgloss.Color
	Subtext0 lipgloss.Color
	Lavender lipgloss.Color
	Sapphire lipgloss.Color
	Green    lipgloss.Color
	Peach    lipgloss.Color
	Crust    lipgloss.Color
}

var (
	Mocha = Palette{
		Base:     "#1e1e2e",
		Mantle:   "#181825",
		Surface1: "#45475a",
		Text:     "#cdd6f4",
		Subtext0: "#a6adc8",
		Lavender: "#b4befe",
		Sapphire: "#74c7ec",
		Green:    "#a6e3a1",
		Peach:    "#fab387",
		Crust:    "#11111b",
	}
	Latte = Palette{
		Base:     "#eff1f5",
		Mantle:   "#e6e9ef",
		Surface1: "#bcc0cc",
		Text:     "#4c4f69",
		Subtext0: "#6c6f85",
		Lavender: "#7287fd",
		Sapphire: "#209fb5",
		Green:    "#40a02b",
		Peach:    "#fe640b",
		Crust:    "#dce0e8",
	}
)

type Styles struct {
	Palette Palette

	App        lipgloss.Style
	Pane       lipgloss.Style
	PaneActive lipgloss.Style
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Hot        lipgloss.Style
	Done       lipgloss.Style
	Bar        lipgloss.Style

	WhiteKey       lipgloss.Style
	WhiteKeyActive lipgloss.Style
	BlackKey       lipgloss.Style
	BlackKeyActive lipgloss.Style
	KeyCursor      lipgloss.Style
}

// New returns the styles for a theme name. Anything but "dark" is light.
func New(name string) Styles {
	p := Latte
	if name == Dark {
		p = Mocha
	}
	pane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface1).
		Background(p.Mantle).
		Foreground(p.Text).
		Padding(0, 1)

	return Styles{
		Palette:    p,
		App:        lipgloss.NewStyle().Background(p.Base).Foreground(p.Text).Padding(1, 2),
		Pane:       pane,
		PaneActive: pane.BorderForeground(p.Lavender),
		Title:      lipgloss.NewStyle().Foreground(p.Sapphire).Bold(true),
		Muted:      lipgloss.NewStyle().Foreground(p.Subtext0),
		Hot:        lipgloss.NewStyle().Foreground(p.Peach).Bold(true),
		Done:       lipgloss.NewStyle().Foreground(p.Green),
		Bar:        lipgloss.NewStyle().Background(p.Mantle).Foreground(p.Text),

		WhiteKey:       lipgloss.NewStyle().Background(lipgloss.Color("#f5f5f5")).Foreground(lipgloss.Color("#4c4f69")),
		WhiteKeyActive: lipgloss.NewStyle().Background(p.Sapphire).Foreground(p.Crust).Bold(true),
		BlackKey:       lipgloss.NewStyle().Background(lipgloss.Color("#11111b")).Foreground(lipgloss.Color("#6c7086")),
		BlackKeyActive: lipgloss.NewStyle().Background(p.Lavender).Foreground(p.Crust),
		KeyCursor:      lipgloss.NewStyle().Foreground(p.Peach).Bold(true),
	}
}
