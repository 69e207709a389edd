package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/pagekit/internal/domain/favicon"
)

// FaviconRenderer renders favicon discovery results.
type FaviconRenderer struct {
	theme *Theme
}

// NewFaviconRenderer creates a favicon renderer with the given theme.
func NewFaviconRenderer(theme *Theme) *FaviconRenderer {
	return &FaviconRenderer{theme: theme}
}

// RenderPage renders the candidates of one page and the icon that was kept.
// An empty best means no candidate produced an icon.
func (r *FaviconRenderer) RenderPage(page string, candidates []favicon.Candidate, best string, size favicon.Size, path string) string {
	var sb strings.Builder

	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	sb.WriteString(fmt.Sprintf("\n  %s %s\n", iconStyle.Render(IconGlobe), r.theme.Title.Render(page)))

	for _, c := range candidates {
		marker := r.theme.Subtle.Render(IconCursor)
		name := r.theme.Normal.Render(c.URL)
		if c.URL == best {
			marker = r.theme.SuccessStyle.Render(IconCheck)
			name = r.theme.Highlight.Render(c.URL)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s%s\n", marker, name, r.theme.MutedBadge(c.Kind.String()), r.sizeBadge(c)))
	}

	if best == "" {
		sb.WriteString(fmt.Sprintf("    %s %s\n",
			r.theme.WarningStyle.Render(IconWarning),
			r.theme.Subtle.Render("no usable icon"),
		))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("    %s %s %s\n",
		iconStyle.Render(IconImage),
		r.theme.AccentBadge(size.String()),
		r.theme.Subtle.Render(path),
	))
	return sb.String()
}

func (r *FaviconRenderer) sizeBadge(c favicon.Candidate) string {
	switch {
	case c.MultiSize:
		return " " + r.theme.MutedBadge("multi")
	case !c.Size.IsEmpty():
		return " " + r.theme.MutedBadge(c.Size.String())
	default:
		return ""
	}
}

// RenderPageError renders a page that could not be processed.
func (r *FaviconRenderer) RenderPageError(page string, err error) string {
	return fmt.Sprintf("\n  %s %s\n    %s\n",
		r.theme.ErrorStyle.Render(IconX),
		r.theme.Title.Render(page),
		r.theme.ErrorStyle.Render(err.Error()),
	)
}
