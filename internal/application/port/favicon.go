package port

import (
	"context"
	"image"

	"github.com/bnema/pagekit/internal/domain/favicon"
)

// IconRequest identifies one icon download issued for a document.
type IconRequest struct {
	DocumentID string
	RequestID  favicon.RequestID
	URL        string
}

// IconResult carries the sibling bitmaps decoded from one icon resource.
// Images[i] is nil when entry i failed to decode. Err is set on network or
// format failures, in which case Images is empty.
type IconResult struct {
	IconRequest
	Images []image.Image
	Sizes  []favicon.Size
	Err    error
}

// IconFetcher downloads and decodes icon resources.
// Fetch returns immediately; done is called exactly once, from another
// goroutine, when the fetch finishes.
type IconFetcher interface {
	Fetch(ctx context.Context, req IconRequest, done func(IconResult))
}

// IconStore persists resolved icons outside the document lifetime.
type IconStore interface {
	StoreIcon(ctx context.Context, url string, img image.Image) error
}
