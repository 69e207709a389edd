package download

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// emptyZip is a zip archive consisting only of an end of central directory record.
var emptyZip = []byte("PK\x05\x06" + strings.Repeat("\x00", 18))

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		outcome  Outcome
		reason   Reason
		mimeType string
	}{
		{
			name:     "save as empty file without headers",
			input:    Input{URL: "http://host/foo.txt", UserAction: ActionExplicitSaveAs},
			outcome:  OutcomeDownload,
			reason:   ReasonUserRequestedSaveAs,
			mimeType: "",
		},
		{
			name: "save as ignores attribute and attachment",
			input: Input{
				URL:                        "http://host/foo.txt",
				UserAction:                 ActionExplicitSaveAs,
				AnchorHasDownloadAttribute: true,
				ContentDisposition:         "attachment",
				ContentType:                "text/plain",
				Body:                       []byte("bar"),
			},
			outcome:  OutcomeDownload,
			reason:   ReasonUserRequestedSaveAs,
			mimeType: "text/plain",
		},
		{
			name: "navigate with download attribute",
			input: Input{
				URL:                        "http://host/foo.txt",
				AnchorHasDownloadAttribute: true,
				ContentType:                "text/plain",
				Body:                       []byte("bar"),
			},
			outcome:  OutcomeDownload,
			reason:   ReasonAnchorDownloadAttribute,
			mimeType: "text/plain",
		},
		{
			name: "attribute wins over attachment",
			input: Input{
				URL:                        "http://host/foo.txt",
				AnchorHasDownloadAttribute: true,
				ContentDisposition:         "attachment",
				ContentType:                "text/plain",
				Body:                       []byte("bar"),
			},
			outcome:  OutcomeDownload,
			reason:   ReasonAnchorDownloadAttribute,
			mimeType: "text/plain",
		},
		{
			name: "navigate with attachment disposition",
			input: Input{
				URL:                "http://host/foo.txt",
				ContentDisposition: "attachment",
				ContentType:        "text/plain",
				Body:               []byte("bar"),
			},
			outcome:  OutcomeDownload,
			reason:   ReasonContentDispositionAttachment,
			mimeType: "text/plain",
		},
		{
			name: "navigate to text file is displayed",
			input: Input{
				URL:         "http://host/foo.txt",
				ContentType: "text/plain",
				Body:        []byte("bar"),
			},
			outcome:  OutcomeDisplay,
			reason:   ReasonNone,
			mimeType: "text/plain",
		},
		{
			name:     "navigate to empty file is displayed",
			input:    Input{URL: "http://host/foo.txt"},
			outcome:  OutcomeDisplay,
			reason:   ReasonNone,
			mimeType: "",
		},
		{
			name:     "file extension has no effect",
			input:    Input{URL: "http://host/foo.zip", Body: []byte("bar")},
			outcome:  OutcomeDisplay,
			reason:   ReasonNone,
			mimeType: "text/plain",
		},
		{
			name:     "actual zip body is sniffed",
			input:    Input{URL: "http://host/foo.zip", Body: emptyZip},
			outcome:  OutcomeDisplay,
			reason:   ReasonNone,
			mimeType: "application/octet-stream",
		},
		{
			name:     "declared type is reported over sniffed type",
			input:    Input{URL: "http://host/foo.zip", ContentType: "application/zip", Body: emptyZip},
			outcome:  OutcomeDisplay,
			reason:   ReasonNone,
			mimeType: "application/zip",
		},
		{
			name:     "declared type parameters are stripped",
			input:    Input{URL: "http://host/a", ContentType: "Text/Plain; charset=utf-8", Body: emptyZip},
			outcome:  OutcomeDisplay,
			reason:   ReasonNone,
			mimeType: "text/plain",
		},
		{
			name: "unrenderable policy downloads zip",
			input: Input{
				URL:                  "http://host/foo.zip",
				Body:                 emptyZip,
				DownloadUnrenderable: true,
			},
			outcome:  OutcomeDownload,
			reason:   ReasonUnrenderableMimeType,
			mimeType: "application/octet-stream",
		},
		{
			name: "unrenderable policy still displays text",
			input: Input{
				URL:                  "http://host/foo.txt",
				ContentType:          "text/plain",
				Body:                 []byte("bar"),
				DownloadUnrenderable: true,
			},
			outcome:  OutcomeDisplay,
			reason:   ReasonNone,
			mimeType: "text/plain",
		},
		{
			name: "unrenderable policy ignores empty type",
			input: Input{
				URL:                  "http://host/foo.txt",
				DownloadUnrenderable: true,
			},
			outcome: OutcomeDisplay,
			reason:  ReasonNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.input)
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.mimeType, d.MimeType)
		})
	}
}

func TestResolve_SuggestedFilename(t *testing.T) {
	d := Resolve(Input{URL: "http://host/dir/foo.txt", UserAction: ActionExplicitSaveAs})
	assert.Equal(t, "foo.txt", d.SuggestedFilename)

	d = Resolve(Input{
		URL:                "http://host/dir/foo.txt",
		ContentDisposition: `attachment; filename="../report.pdf"`,
	})
	assert.Equal(t, "report.pdf", d.SuggestedFilename)

	d = Resolve(Input{
		URL:                        "http://host/dir/foo.txt",
		AnchorHasDownloadAttribute: true,
		AnchorDownloadName:         "renamed.txt",
		ContentDisposition:         `attachment; filename="report.pdf"`,
	})
	assert.Equal(t, "renamed.txt", d.SuggestedFilename)
}

func TestIsAttachment(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"attachment", true},
		{"ATTACHMENT", true},
		{" Attachment ; filename=foo.txt", true},
		{`attachment; filename="foo.txt"`, true},
		{"attachment;;;", true},
		{"inline", false},
		{"inline; filename=attachment.txt", false},
		{"attachments", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAttachment(tt.input))
		})
	}
}

func TestSniffMimeType(t *testing.T) {
	assert.Equal(t, "", SniffMimeType(nil))
	assert.Equal(t, "text/plain", SniffMimeType([]byte("bar")))
	assert.Equal(t, "application/octet-stream", SniffMimeType(emptyZip))
	assert.Equal(t, "text/html", SniffMimeType([]byte("<!DOCTYPE html><html></html>")))
	assert.Equal(t, "image/png", SniffMimeType([]byte("\x89PNG\r\n\x1a\n0000")))
}

func TestIsRenderable(t *testing.T) {
	assert.True(t, IsRenderable("text/plain"))
	assert.True(t, IsRenderable("text/html; charset=utf-8"))
	assert.True(t, IsRenderable("image/png"))
	assert.True(t, IsRenderable("application/pdf"))
	assert.True(t, IsRenderable("video/mp4"))
	assert.False(t, IsRenderable("application/zip"))
	assert.False(t, IsRenderable("application/octet-stream"))
	assert.False(t, IsRenderable(""))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "navigate", ActionNavigate.String())
	assert.Equal(t, "save-as", ActionExplicitSaveAs.String())
	assert.Equal(t, "display", OutcomeDisplay.String())
	assert.Equal(t, "download", OutcomeDownload.String())
	assert.Equal(t, "content-disposition-attachment", ReasonContentDispositionAttachment.String())
	assert.Equal(t, "none", ReasonNone.String())
}
