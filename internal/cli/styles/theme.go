// Package styles renders pagekit output with lipgloss.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors a Theme is built from.
type Palette struct {
	Background string
	Badge      string
	Text       string
	Muted      string
	Accent     string
	Warning    string
	Error      string
}

// Theme holds the colors and styles shared by the renderers.
type Theme struct {
	Background lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	Error      lipgloss.Color

	Title        lipgloss.Style
	Normal       lipgloss.Style
	Subtle       lipgloss.Style
	Highlight    lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	SuccessStyle lipgloss.Style

	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	badge      lipgloss.Style
	badgeMuted lipgloss.Style
}

// DefaultDarkPalette is the palette used by NewTheme.
func DefaultDarkPalette() Palette {
	return Palette{
		Background: "#0a0a0b",
		Badge:      "#2d2d2d",
		Text:       "#ffffff",
		Muted:      "#909090",
		Accent:     "#4ade80",
		Warning:    "#f59e0b",
		Error:      "#ef4444",
	}
}

// NewTheme creates the default dark theme.
func NewTheme() *Theme {
	return NewThemeFromPalette(DefaultDarkPalette())
}

// NewThemeFromPalette builds every style from p.
func NewThemeFromPalette(p Palette) *Theme {
	text := lipgloss.Color(p.Text)
	t := &Theme{
		Background: lipgloss.Color(p.Background),
		Muted:      lipgloss.Color(p.Muted),
		Accent:     lipgloss.Color(p.Accent),
		Error:      lipgloss.Color(p.Error),
	}

	t.Title = lipgloss.NewStyle().Foreground(text).Bold(true)
	t.Normal = lipgloss.NewStyle().Foreground(text)
	t.Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	t.Highlight = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	t.WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warning))
	t.SuccessStyle = lipgloss.NewStyle().Foreground(t.Accent)

	t.HelpKey = lipgloss.NewStyle().Foreground(t.Accent)
	t.HelpDesc = lipgloss.NewStyle().Foreground(t.Muted)

	t.badge = lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Padding(0, 1)
	t.badgeMuted = lipgloss.NewStyle().Foreground(text).Background(lipgloss.Color(p.Badge)).Padding(0, 1)
	return t
}

// AccentBadge renders text on the accent color.
func (t *Theme) AccentBadge(text string) string {
	return t.badge.Render(text)
}

// MutedBadge renders text on a neutral background.
func (t *Theme) MutedBadge(text string) string {
	return t.badgeMuted.Render(text)
}

// StatusBadge renders text on the error color.
func (t *Theme) StatusBadge(text string) string {
	return lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Error).
		Padding(0, 1).
		Render(text)
}
