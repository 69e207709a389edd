package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/pagekit/internal/domain/download"
)

// DownloadRenderer renders disposition decisions and transfer outcomes.
type DownloadRenderer struct {
	theme *Theme
}

// NewDownloadRenderer creates a download renderer with the given theme.
func NewDownloadRenderer(theme *Theme) *DownloadRenderer {
	return &DownloadRenderer{theme: theme}
}

// RenderDecision renders the outcome for url.
func (r *DownloadRenderer) RenderDecision(url string, status int, d download.Decision) string {
	var sb strings.Builder

	icon := IconEye
	outcome := r.theme.MutedBadge(d.Outcome.String())
	if d.Outcome == download.OutcomeDownload {
		icon = IconDownload
		outcome = r.theme.AccentBadge(d.Outcome.String())
	}

	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	sb.WriteString(fmt.Sprintf("\n  %s %s %s\n", iconStyle.Render(icon), outcome, r.theme.Normal.Render(url)))
	sb.WriteString(r.row("status", fmt.Sprintf("%d", status)))
	sb.WriteString(r.row("reason", d.Reason.String()))
	mimeType := d.MimeType
	if mimeType == "" {
		mimeType = "(none)"
	}
	sb.WriteString(r.row("mime", mimeType))
	sb.WriteString(r.row("filename", d.SuggestedFilename))
	return sb.String()
}

// RenderTransfer renders the final state of a transfer.
func (r *DownloadRenderer) RenderTransfer(t *download.Transfer) string {
	if t.State == download.StateCompleted {
		return fmt.Sprintf("\n  %s %s %s\n",
			r.theme.SuccessStyle.Render(IconCheck),
			r.theme.Highlight.Render(t.Path),
			r.theme.MutedBadge(FormatBytes(t.ReceivedBytes)),
		)
	}
	return fmt.Sprintf("\n  %s %s %s\n",
		r.theme.ErrorStyle.Render(IconX),
		r.theme.Normal.Render(t.URL),
		r.theme.StatusBadge(t.InterruptReason.String()),
	)
}

// RenderHistory renders recorded transfers, one per line, newest first.
func (r *DownloadRenderer) RenderHistory(transfers []*download.Transfer) string {
	if len(transfers) == 0 {
		return fmt.Sprintf("\n  %s %s\n", r.theme.Subtle.Render(IconInfo), r.theme.Subtle.Render("no downloads recorded"))
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for _, t := range transfers {
		icon := r.theme.SuccessStyle.Render(IconCheck)
		target := t.Path
		badge := r.theme.MutedBadge(FormatBytes(t.ReceivedBytes))
		if t.State != download.StateCompleted {
			icon = r.theme.ErrorStyle.Render(IconX)
			target = t.URL
			badge = r.theme.StatusBadge(t.InterruptReason.String())
		}
		when := ""
		if !t.FinishedAt.IsZero() {
			when = t.FinishedAt.Local().Format("2006-01-02 15:04")
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			icon,
			r.theme.Subtle.Render(when),
			r.theme.Normal.Render(target),
			badge,
		))
		sb.WriteString(fmt.Sprintf("      %s %s\n",
			r.theme.Subtle.Render(t.ID),
			r.theme.Subtle.Render(t.Reason.String()),
		))
	}
	return sb.String()
}

func (r *DownloadRenderer) row(label, value string) string {
	return fmt.Sprintf("    %s %s\n", r.theme.Subtle.Render(fmt.Sprintf("%-9s", label)), r.theme.Normal.Render(value))
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
