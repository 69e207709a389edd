package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/domain/favicon"
	"github.com/bnema/pagekit/internal/logging"
)

// ManageFaviconsUseCase owns one favicon tracker per document. Calls for a
// document are serialised; fetch completions re-enter through OnFetchComplete
// from fetcher goroutines.
type ManageFaviconsUseCase struct {
	fetcher port.IconFetcher
	store   port.IconStore

	touchIconsEnabled atomic.Bool

	mu   sync.Mutex
	docs map[string]*faviconDocument
}

type faviconDocument struct {
	id      string
	mu      sync.Mutex
	tracker *favicon.Tracker
	outbox  []port.IconRequest
	changed chan struct{}
	closed  bool
}

// Fetch queues the request; it is sent once the document lock is released.
func (d *faviconDocument) Fetch(id favicon.RequestID, url string) {
	d.outbox = append(d.outbox, port.IconRequest{DocumentID: d.id, RequestID: id, URL: url})
}

// signal wakes WaitIdle callers. Caller holds d.mu.
func (d *faviconDocument) signal() {
	close(d.changed)
	d.changed = make(chan struct{})
}

// NewManageFaviconsUseCase creates the use case. store may be nil to skip
// icon export.
func NewManageFaviconsUseCase(fetcher port.IconFetcher, store port.IconStore, touchIconsEnabled bool) *ManageFaviconsUseCase {
	uc := &ManageFaviconsUseCase{
		fetcher: fetcher,
		store:   store,
		docs:    make(map[string]*faviconDocument),
	}
	uc.touchIconsEnabled.Store(touchIconsEnabled)
	return uc
}

// OnFaviconURLsUpdated merges the candidates a document announced.
func (uc *ManageFaviconsUseCase) OnFaviconURLsUpdated(ctx context.Context, docID string, candidates []favicon.Candidate) {
	ctx = logging.WithDocumentID(ctx, docID)
	log := logging.FromContext(ctx)

	doc := uc.document(docID, true)
	uc.update(ctx, doc, func(t *favicon.Tracker) {
		t.AnnounceCandidates(candidates)
		stats := t.Stats()
		log.Debug().
			Int("announced", len(candidates)).
			Int("candidates", stats.Candidates).
			Int("pending", stats.Pending).
			Int("in_progress", stats.InProgress).
			Msg("favicon candidates updated")
	})
}

// OnNavigation resets the document's candidates for a new top-level load.
// Cached icons are kept and fetches on the wire are not cancelled.
func (uc *ManageFaviconsUseCase) OnNavigation(ctx context.Context, docID string) {
	ctx = logging.WithDocumentID(ctx, docID)

	doc := uc.document(docID, false)
	if doc == nil {
		return
	}
	uc.update(ctx, doc, func(t *favicon.Tracker) {
		t.ResetCandidates()
	})
	logging.FromContext(ctx).Debug().Msg("favicon candidates reset")
}

// OnFetchComplete records a fetch result for the document currently open
// under result.DocumentID. Results for closed documents are dropped.
func (uc *ManageFaviconsUseCase) OnFetchComplete(ctx context.Context, result port.IconResult) {
	ctx = logging.WithDocumentID(ctx, result.DocumentID)

	doc := uc.document(result.DocumentID, false)
	if doc == nil {
		logging.FromContext(ctx).Debug().Str("url", result.URL).Msg("dropping icon for closed document")
		return
	}
	uc.complete(ctx, doc, result)
}

// complete applies a result to the document that issued the fetch and exports
// the cached icon. A document reopened under the same id is a different doc.
func (uc *ManageFaviconsUseCase) complete(ctx context.Context, doc *faviconDocument, result port.IconResult) {
	log := logging.FromContext(ctx)

	if result.Err != nil {
		log.Warn().Err(result.Err).Str("url", result.URL).Msg("favicon fetch failed")
	}

	// The export runs before waiters are signaled so an idle document has
	// its icon queued for disk.
	var (
		icon     favicon.Icon
		storeErr error
	)
	applied := uc.update(ctx, doc, func(t *favicon.Tracker) {
		t.DownloadCompleted(result.RequestID, result.URL, result.Images, result.Sizes)
		icon = t.IconFor(result.URL)
		if !icon.IsNull() && uc.store != nil {
			storeErr = uc.store.StoreIcon(ctx, icon.URL, icon.Image)
		}
	})
	if !applied {
		log.Debug().Str("url", result.URL).Msg("dropping icon for closed document")
		return
	}

	if icon.IsNull() {
		log.Debug().Str("url", result.URL).Msg("no decodable favicon bitmap")
		return
	}

	log.Debug().
		Str("url", icon.URL).
		Str("size", icon.Size.String()).
		Msg("favicon cached")

	if storeErr != nil {
		log.Warn().Err(storeErr).Str("url", icon.URL).Msg("failed to export favicon")
	}
}

// Icon returns the cached icon for url, or the page icon when url is empty.
func (uc *ManageFaviconsUseCase) Icon(docID, url string) favicon.Icon {
	var icon favicon.Icon
	uc.read(docID, func(t *favicon.Tracker) {
		icon = t.IconFor(url)
	})
	return icon
}

// FaviconInfo returns what the document knows about url.
func (uc *ManageFaviconsUseCase) FaviconInfo(docID, url string) (favicon.Candidate, bool) {
	var (
		info favicon.Candidate
		ok   bool
	)
	uc.read(docID, func(t *favicon.Tracker) {
		info, ok = t.CandidateInfo(url)
	})
	return info, ok
}

// FaviconInfoList lists the document's entries in announcement order.
func (uc *ManageFaviconsUseCase) FaviconInfoList(docID string, onlyCandidates bool) []favicon.Candidate {
	var list []favicon.Candidate
	uc.read(docID, func(t *favicon.Tracker) {
		list = t.Candidates(onlyCandidates)
	})
	return list
}

// Stats returns the document's tracker counters.
func (uc *ManageFaviconsUseCase) Stats(docID string) favicon.Stats {
	var stats favicon.Stats
	uc.read(docID, func(t *favicon.Tracker) {
		stats = t.Stats()
	})
	return stats
}

// SetTouchIconsEnabled changes the preference for every open document and
// for documents opened later.
func (uc *ManageFaviconsUseCase) SetTouchIconsEnabled(ctx context.Context, enabled bool) {
	if uc.touchIconsEnabled.Swap(enabled) == enabled {
		return
	}
	logging.FromContext(ctx).Info().Bool("enabled", enabled).Msg("touch icons preference changed")

	for _, doc := range uc.documents() {
		uc.update(logging.WithDocumentID(ctx, doc.id), doc, func(t *favicon.Tracker) {
			t.SetTouchIconsEnabled(enabled)
		})
	}
}

// WaitIdle blocks until the document has no fetch queued or in flight, the
// document is closed, or ctx is done.
func (uc *ManageFaviconsUseCase) WaitIdle(ctx context.Context, docID string) error {
	doc := uc.document(docID, false)
	if doc == nil {
		return nil
	}
	for {
		doc.mu.Lock()
		if doc.closed || doc.tracker.Idle() {
			doc.mu.Unlock()
			return nil
		}
		changed := doc.changed
		doc.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// CloseDocument destroys the document's tracker and icon cache.
func (uc *ManageFaviconsUseCase) CloseDocument(ctx context.Context, docID string) {
	uc.mu.Lock()
	doc, ok := uc.docs[docID]
	delete(uc.docs, docID)
	uc.mu.Unlock()
	if !ok {
		return
	}

	doc.mu.Lock()
	doc.tracker.Clear()
	doc.outbox = nil
	doc.closed = true
	doc.signal()
	doc.mu.Unlock()

	logging.FromContext(logging.WithDocumentID(ctx, docID)).Debug().Msg("favicon document closed")
}

func (uc *ManageFaviconsUseCase) document(docID string, create bool) *faviconDocument {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	doc, ok := uc.docs[docID]
	if ok || !create {
		return doc
	}
	doc = &faviconDocument{id: docID, changed: make(chan struct{})}
	doc.tracker = favicon.NewTracker(doc, uc.touchIconsEnabled.Load())
	uc.docs[docID] = doc
	return doc
}

func (uc *ManageFaviconsUseCase) documents() []*faviconDocument {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	docs := make([]*faviconDocument, 0, len(uc.docs))
	for _, doc := range uc.docs {
		docs = append(docs, doc)
	}
	return docs
}

// update runs fn under the document lock and then dispatches the fetches the
// tracker asked for. Completions go back to doc itself. It reports false when
// doc is closed.
func (uc *ManageFaviconsUseCase) update(ctx context.Context, doc *faviconDocument, fn func(*favicon.Tracker)) bool {
	doc.mu.Lock()
	if doc.closed {
		doc.mu.Unlock()
		return false
	}
	fn(doc.tracker)
	requests := doc.outbox
	doc.outbox = nil
	doc.signal()
	doc.mu.Unlock()

	for _, req := range requests {
		logging.FromContext(ctx).Debug().
			Int("request_id", int(req.RequestID)).
			Str("url", req.URL).
			Msg("dispatching favicon fetch")
		uc.fetcher.Fetch(ctx, req, func(result port.IconResult) {
			uc.complete(ctx, doc, result)
		})
	}
	return true
}

func (uc *ManageFaviconsUseCase) read(docID string, fn func(*favicon.Tracker)) {
	doc := uc.document(docID, false)
	if doc == nil {
		return
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if !doc.closed {
		fn(doc.tracker)
	}
}
