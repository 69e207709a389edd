package styles_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pagekit/internal/cli/styles"
	"github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/domain/favicon"
)

func TestFaviconRenderer_RenderPage(t *testing.T) {
	r := styles.NewFaviconRenderer(styles.NewTheme())

	out := r.RenderPage("https://example.com/",
		[]favicon.Candidate{
			{URL: "https://example.com/favicon.ico", Kind: favicon.KindFavicon, Size: favicon.Size{Width: 16, Height: 16}},
			{URL: "https://example.com/touch.png", Kind: favicon.KindTouchIcon, MultiSize: true},
		},
		"https://example.com/favicon.ico",
		favicon.Size{Width: 16, Height: 16},
		"/tmp/icons/example.com-0011.png",
	)

	require.Contains(t, out, "https://example.com/")
	assert.Contains(t, out, "touch-icon")
	assert.Contains(t, out, "multi")
	assert.Contains(t, out, "16x16")
	assert.Contains(t, out, "/tmp/icons/example.com-0011.png")
}

func TestFaviconRenderer_NoIcon(t *testing.T) {
	r := styles.NewFaviconRenderer(styles.NewTheme())

	assert.Contains(t, r.RenderPage("https://example.com/", nil, "", favicon.Size{}, ""), "no usable icon")
	assert.Contains(t, r.RenderPageError("https://example.com/", errors.New("boom")), "boom")
}

func TestDownloadRenderer_RenderDecision(t *testing.T) {
	r := styles.NewDownloadRenderer(styles.NewTheme())

	out := r.RenderDecision("https://example.com/a.zip", 200, download.Decision{
		Outcome:           download.OutcomeDownload,
		Reason:            download.ReasonContentDispositionAttachment,
		SuggestedFilename: "a.zip",
		MimeType:          "application/zip",
	})

	assert.Contains(t, out, "download")
	assert.Contains(t, out, "content-disposition-attachment")
	assert.Contains(t, out, "application/zip")
	assert.Contains(t, out, "a.zip")

	out = r.RenderDecision("https://example.com/", 200, download.Decision{})
	assert.Contains(t, out, "display")
	assert.Contains(t, out, "(none)")
}

func TestDownloadRenderer_RenderTransfer(t *testing.T) {
	r := styles.NewDownloadRenderer(styles.NewTheme())

	done := &download.Transfer{Path: "/tmp/a.zip", State: download.StateCompleted, ReceivedBytes: 2048}
	out := r.RenderTransfer(done)
	assert.Contains(t, out, "/tmp/a.zip")
	assert.Contains(t, out, "2.0 KiB")

	failed := &download.Transfer{URL: "https://example.com/a.zip", State: download.StateInterrupted, InterruptReason: download.InterruptServerBadContent}
	assert.Contains(t, r.RenderTransfer(failed), "server-bad-content")
}

func TestDownloadRenderer_RenderHistory(t *testing.T) {
	r := styles.NewDownloadRenderer(styles.NewTheme())

	assert.Contains(t, r.RenderHistory(nil), "no downloads recorded")

	out := r.RenderHistory([]*download.Transfer{
		{ID: "id-1", Path: "/tmp/report.pdf", State: download.StateCompleted, ReceivedBytes: 2048,
			Reason: download.ReasonContentDispositionAttachment},
		{ID: "id-2", URL: "https://example.com/big.iso", State: download.StateInterrupted,
			InterruptReason: download.InterruptNetworkTimeout},
	})
	assert.Contains(t, out, "/tmp/report.pdf")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "id-1")
	assert.Contains(t, out, "https://example.com/big.iso")
	assert.Contains(t, out, "network-timeout")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in       int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, styles.FormatBytes(tt.in))
		})
	}
}

func TestConfigRenderer(t *testing.T) {
	r := styles.NewConfigRenderer(styles.NewTheme())

	assert.Contains(t, r.RenderConfigPath("/tmp/pagekit/config.toml"), "config.toml")
	assert.Contains(t, r.RenderSchemaWritten("/tmp/pagekit/config.schema.json"), "config.schema.json")
	assert.Contains(t, r.RenderSet("favicon.export_size", "64"), "favicon.export_size")
	assert.Contains(t, r.RenderError(errors.New("bad key")), "bad key")
}
