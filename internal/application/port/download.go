package port

import (
	"context"

	"github.com/bnema/pagekit/internal/domain/download"
)

// ResponseDescriptor is what the engine knows about a response when it has to
// decide between rendering and downloading it.
type ResponseDescriptor struct {
	URL                        string
	StatusCode                 int
	UserAction                 download.UserAction
	AnchorHasDownloadAttribute bool
	AnchorDownloadName         string
	ContentType                string
	ContentDisposition         string
	// ContentLength is -1 when unknown.
	ContentLength int64
	// Sniff holds the first bytes of the body.
	Sniff []byte
}

// DownloadResponse exposes response metadata used for filename resolution.
type DownloadResponse interface {
	GetMimeType() string
	GetSuggestedFilename() string
	GetUri() string
}

// DownloadEventType represents the type of download event.
type DownloadEventType int

const (
	// DownloadEventStarted indicates a download has begun.
	DownloadEventStarted DownloadEventType = iota
	// DownloadEventProgress indicates more bytes were received.
	DownloadEventProgress
	// DownloadEventFinished indicates a download completed successfully.
	DownloadEventFinished
	// DownloadEventFailed indicates a download was interrupted.
	DownloadEventFailed
)

// DownloadEvent contains information about a download event.
type DownloadEvent struct {
	Type          DownloadEventType
	TransferID    string
	Filename      string
	Destination   string
	State         download.State
	ReceivedBytes int64
	TotalBytes    int64
	Interrupt     download.InterruptReason
	Error         error // Set when Type is DownloadEventFailed
}

// DownloadEventHandler receives download event notifications.
type DownloadEventHandler interface {
	OnDownloadEvent(ctx context.Context, event DownloadEvent)
}

// DownloadEventHandlerFunc adapts a function to DownloadEventHandler.
type DownloadEventHandlerFunc func(ctx context.Context, event DownloadEvent)

// OnDownloadEvent calls f(ctx, event).
func (f DownloadEventHandlerFunc) OnDownloadEvent(ctx context.Context, event DownloadEvent) {
	f(ctx, event)
}
