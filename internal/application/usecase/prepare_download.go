package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/logging"
)

// PrepareDownloadInput contains the inputs for preparing a download destination.
type PrepareDownloadInput struct {
	// SuggestedFilename comes from the disposition decision (anchor name,
	// Content-Disposition or URL path, in that order).
	SuggestedFilename string
	// Response provides additional metadata (MIME type, URI) for filename resolution.
	// May be nil if not available.
	Response port.DownloadResponse
	// DownloadDir is the directory where downloads should be saved.
	DownloadDir string
}

// PrepareDownloadOutput contains the resolved download destination.
type PrepareDownloadOutput struct {
	Filename        string
	DestinationPath string
}

// PrepareDownloadUseCase turns a suggested filename into a safe, unique
// destination path inside the download directory.
type PrepareDownloadUseCase struct {
	fs port.FileSystem
}

// NewPrepareDownloadUseCase creates a new PrepareDownloadUseCase.
// If fs is nil, directory creation and filename deduplication are disabled.
func NewPrepareDownloadUseCase(fs port.FileSystem) *PrepareDownloadUseCase {
	return &PrepareDownloadUseCase{fs: fs}
}

// Execute resolves the download filename and destination path, creating the
// download directory when needed.
func (u *PrepareDownloadUseCase) Execute(ctx context.Context, input PrepareDownloadInput) (*PrepareDownloadOutput, error) {
	log := logging.FromContext(ctx)

	if input.DownloadDir == "" {
		return nil, fmt.Errorf("prepare download: empty download directory")
	}

	resolvedName := resolveSuggestedFilename(input.SuggestedFilename, input.Response)

	mimeType := ""
	if input.Response != nil {
		mimeType = input.Response.GetMimeType()
	}
	safeName := download.SanitizeFilenameWithExtension(resolvedName, mimeType)

	if u.fs != nil {
		if err := u.fs.MkdirAll(ctx, input.DownloadDir); err != nil {
			return nil, fmt.Errorf("create download directory: %w", err)
		}
		safeName = download.MakeUniqueFilename(input.DownloadDir, safeName, func(path string) bool {
			exists, err := u.fs.Exists(ctx, path)
			// An unreadable path is treated as taken.
			return err != nil || exists
		})
	}

	destPath := filepath.Join(input.DownloadDir, safeName)

	log.Debug().
		Str("suggested", input.SuggestedFilename).
		Str("resolved", resolvedName).
		Str("sanitized", safeName).
		Str("destPath", destPath).
		Msg("prepared download destination")

	return &PrepareDownloadOutput{
		Filename:        safeName,
		DestinationPath: destPath,
	}, nil
}

func resolveSuggestedFilename(name string, response port.DownloadResponse) string {
	if name != "" || response == nil {
		return name
	}
	if suggested := response.GetSuggestedFilename(); suggested != "" {
		return suggested
	}
	if uri := response.GetUri(); uri != "" {
		return download.ExtractFilenameFromURI(uri)
	}
	return name
}
