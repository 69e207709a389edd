// Package model holds Bubble Tea models used by CLI commands.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/cli/styles"
)

const (
	defaultBarWidth = 40
	minBarWidth     = 20
	maxBarWidth     = 80
)

// DownloadEventMsg carries a transfer event into the program.
type DownloadEventMsg struct {
	Event port.DownloadEvent
}

// DownloadDoneMsg is sent once the transfer returned.
type DownloadDoneMsg struct {
	Err error
}

// DownloadModel shows the progress of one transfer.
type DownloadModel struct {
	theme    *styles.Theme
	progress progress.Model
	spinner  spinner.Model
	cancel   context.CancelFunc

	filename string
	received int64
	total    int64
	started  bool
	canceled bool
	done     bool
	err      error
}

// NewDownloadModel creates a progress view for filename. cancel is called
// when the user quits before the transfer finished.
func NewDownloadModel(theme *styles.Theme, filename string, cancel context.CancelFunc) DownloadModel {
	return DownloadModel{
		theme:    theme,
		progress: styles.NewProgressBar(theme, defaultBarWidth),
		spinner:  styles.NewDefaultSpinner(theme),
		cancel:   cancel,
		filename: filename,
		total:    -1,
	}
}

// Init implements tea.Model.
func (m DownloadModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m DownloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-30, minBarWidth), maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The transfer reports back through DownloadDoneMsg.
			if !m.canceled && m.cancel != nil {
				m.cancel()
			}
			m.canceled = true
		}
		return m, nil

	case DownloadEventMsg:
		return m, m.applyEvent(msg.Event)

	case DownloadDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *DownloadModel) applyEvent(e port.DownloadEvent) tea.Cmd {
	if e.Filename != "" {
		m.filename = e.Filename
	}
	m.received = e.ReceivedBytes
	m.total = e.TotalBytes

	switch e.Type {
	case port.DownloadEventStarted:
		m.started = true
	case port.DownloadEventFinished:
		return m.progress.SetPercent(1)
	}

	if percent, ok := m.Percent(); ok {
		return m.progress.SetPercent(percent)
	}
	return nil
}

// Percent returns the completed fraction when the total size is known.
func (m DownloadModel) Percent() (float64, bool) {
	if m.total <= 0 {
		return 0, false
	}
	return min(float64(m.received)/float64(m.total), 1), true
}

// Err returns the error the transfer finished with.
func (m DownloadModel) Err() error {
	return m.err
}

// Canceled reports whether the user asked to stop.
func (m DownloadModel) Canceled() bool {
	return m.canceled
}

// View implements tea.Model.
func (m DownloadModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n  %s %s\n\n", m.spinner.View(), m.theme.Title.Render(m.filename)))

	switch {
	case !m.started:
		b.WriteString("  " + m.theme.Subtle.Render("connecting...") + "\n")
	case m.total > 0:
		b.WriteString("  " + m.progress.View() + "\n")
		b.WriteString(fmt.Sprintf("  %s\n", m.theme.Subtle.Render(
			fmt.Sprintf("%s / %s", styles.FormatBytes(m.received), styles.FormatBytes(m.total)),
		)))
	default:
		b.WriteString(fmt.Sprintf("  %s\n", m.theme.Subtle.Render(styles.FormatBytes(m.received)+" received")))
	}

	help := m.theme.HelpKey.Render("q") + " " + m.theme.HelpDesc.Render("cancel")
	if m.canceled {
		help = m.theme.WarningStyle.Render("canceling...")
	}
	b.WriteString("\n  " + help + "\n")
	return b.String()
}
