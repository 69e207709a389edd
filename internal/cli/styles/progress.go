package styles

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// NewDefaultSpinner creates the default themed spinner.
func NewDefaultSpinner(theme *Theme) spinner.Model {
	s := spinner.New()
	s.Style = lipgloss.NewStyle().Foreground(theme.Accent)
	s.Spinner = spinner.Dot
	return s
}

// NewProgressBar creates a progress bar with a muted-to-accent gradient.
func NewProgressBar(theme *Theme, width int) progress.Model {
	p := progress.New(progress.WithGradient(string(theme.Muted), string(theme.Accent)))
	p.Width = width
	return p
}
