package favicon

import (
	"image"
	"sort"
)

// RequestID identifies one icon download issued by a Tracker.
type RequestID int

const (
	// AlreadySatisfied is returned by RequestDownload when the icon is cached.
	AlreadySatisfied RequestID = 0
	// InvalidRequest is returned by RequestDownload for a malformed URL.
	InvalidRequest RequestID = -1
)

// Fetcher issues the network request for a dispatched download.
// Fetch must not block; the result comes back through DownloadCompleted.
type Fetcher interface {
	Fetch(id RequestID, url string)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(id RequestID, url string)

// Fetch calls f(id, url).
func (f FetcherFunc) Fetch(id RequestID, url string) {
	f(id, url)
}

type entry struct {
	Candidate
	seq int
}

// Stats is a snapshot of tracker bookkeeping.
type Stats struct {
	Candidates int
	Pending    int
	InProgress int
	Cached     int
	Failed     int
}

// Tracker owns the favicon candidates, icon cache and download tables of a
// single document. It is not safe for concurrent use; the owner serialises
// calls.
type Tracker struct {
	fetcher           Fetcher
	touchIconsEnabled bool

	entries map[string]*entry
	seq     int

	icons  map[string]Icon
	failed map[string]bool

	nextID     RequestID
	pending    map[RequestID]string
	inProgress map[RequestID]string
	// detached holds fetches dispatched before the last reset. They still
	// occupy the in-flight slot and their results are still cached.
	detached map[RequestID]string
	byURL    map[string]RequestID
}

// NewTracker creates a tracker dispatching downloads through fetcher.
func NewTracker(fetcher Fetcher, touchIconsEnabled bool) *Tracker {
	return &Tracker{
		fetcher:           fetcher,
		touchIconsEnabled: touchIconsEnabled,
		entries:           make(map[string]*entry),
		icons:             make(map[string]Icon),
		failed:            make(map[string]bool),
		pending:           make(map[RequestID]string),
		inProgress:        make(map[RequestID]string),
		detached:          make(map[RequestID]string),
		byURL:             make(map[string]RequestID),
	}
}

// SetTouchIconsEnabled changes the touch icon preference used when the
// tracker selects and fetches the page icon on its own.
func (t *Tracker) SetTouchIconsEnabled(enabled bool) {
	if t.touchIconsEnabled == enabled {
		return
	}
	t.touchIconsEnabled = enabled
	t.refresh()
}

// TouchIconsEnabled returns the current touch icon preference.
func (t *Tracker) TouchIconsEnabled() bool {
	return t.touchIconsEnabled
}

// AnnounceCandidates merges candidates into the candidate set. Entries are
// keyed by URL; re-announcing a URL updates it in place and re-enables one
// download attempt if it previously failed. Malformed URLs are dropped.
func (t *Tracker) AnnounceCandidates(candidates []Candidate) {
	for _, c := range candidates {
		if c.Kind == KindInvalid {
			continue
		}
		u, ok := normalizeURL(c.URL)
		if !ok {
			continue
		}

		e, exists := t.entries[u]
		if !exists {
			e = &entry{}
			t.entries[u] = e
		}
		if !exists || !e.IsCandidate {
			t.seq++
			e.seq = t.seq
		}

		e.URL = u
		e.Kind = c.Kind
		e.Size = c.Size
		e.MultiSize = c.MultiSize
		e.IsCandidate = true
		delete(t.failed, u)
	}

	t.refresh()
}

// ResetCandidates forgets the candidate set and the request tables, as on a
// new top-level navigation. Cached icons stay retrievable by URL. Fetches
// already on the wire are not cancelled.
func (t *Tracker) ResetCandidates() {
	for _, e := range t.entries {
		e.IsCandidate = false
	}
	for id, u := range t.inProgress {
		t.detached[id] = u
	}
	for _, u := range t.pending {
		delete(t.byURL, u)
	}
	t.pending = make(map[RequestID]string)
	t.inProgress = make(map[RequestID]string)
	t.failed = make(map[string]bool)
}

// Clear drops everything including the icon cache and fetches on the wire,
// as when the document is destroyed. Their results are ignored.
func (t *Tracker) Clear() {
	t.ResetCandidates()
	t.detached = make(map[RequestID]string)
	t.byURL = make(map[string]RequestID)
	t.entries = make(map[string]*entry)
	t.icons = make(map[string]Icon)
	t.seq = 0
}

// HasCandidate reports whether any URL is currently a candidate.
func (t *Tracker) HasCandidate() bool {
	for _, e := range t.entries {
		if e.IsCandidate {
			return true
		}
	}
	return false
}

// BestCandidate returns the URL of the preferred candidate. With touch icons
// enabled the order is touch-precomposed, touch, favicon; otherwise only
// favicons are eligible. Larger sizes win within a kind and ties keep
// announcement order.
func (t *Tracker) BestCandidate(touchIconsEnabled bool) (string, bool) {
	var best *entry
	for u, e := range t.entries {
		if !e.IsCandidate || t.failed[u] {
			continue
		}
		if kindRank(e.Kind, touchIconsEnabled) == 0 {
			continue
		}
		if best == nil || outranks(e, best, touchIconsEnabled) {
			best = e
		}
	}
	if best == nil {
		return "", false
	}
	return best.URL, true
}

func kindRank(k Kind, touchIconsEnabled bool) int {
	if !touchIconsEnabled {
		if k == KindFavicon {
			return 1
		}
		return 0
	}
	switch k {
	case KindTouchPrecomposedIcon:
		return 3
	case KindTouchIcon:
		return 2
	case KindFavicon:
		return 1
	default:
		return 0
	}
}

func outranks(a, b *entry, touchIconsEnabled bool) bool {
	ra, rb := kindRank(a.Kind, touchIconsEnabled), kindRank(b.Kind, touchIconsEnabled)
	if ra != rb {
		return ra > rb
	}
	if a.Size.Area() != b.Size.Area() {
		return a.Size.Area() > b.Size.Area()
	}
	return a.seq < b.seq
}

// IconFor returns the cached icon for url. With an empty url it returns the
// icon of the current best candidate, or the zero Icon when none is cached.
func (t *Tracker) IconFor(url string) Icon {
	if url != "" {
		if u, ok := normalizeURL(url); ok {
			url = u
		}
		return t.icons[url]
	}

	best, ok := t.BestCandidate(t.touchIconsEnabled)
	if !ok {
		return Icon{}
	}
	return t.icons[best]
}

// CandidateInfo returns what is known about url.
func (t *Tracker) CandidateInfo(url string) (Candidate, bool) {
	if u, ok := normalizeURL(url); ok {
		url = u
	}
	e, ok := t.entries[url]
	if !ok {
		return Candidate{}, false
	}
	return e.Candidate, true
}

// Candidates lists known entries in announcement order.
func (t *Tracker) Candidates(onlyCandidates bool) []Candidate {
	list := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		if onlyCandidates && !e.IsCandidate {
			continue
		}
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].seq != list[j].seq {
			return list[i].seq < list[j].seq
		}
		return list[i].URL < list[j].URL
	})

	out := make([]Candidate, len(list))
	for i, e := range list {
		out[i] = e.Candidate
	}
	return out
}

// IsFailed reports whether the last download of url failed.
func (t *Tracker) IsFailed(url string) bool {
	if u, ok := normalizeURL(url); ok {
		url = u
	}
	return t.failed[url]
}

// RequestDownload schedules a download of url. A cached url yields
// AlreadySatisfied, a url already queued or on the wire yields its existing
// id. New requests are dispatched immediately if no fetch is in flight,
// otherwise they wait in the pending queue. A malformed url is not fetched
// and yields InvalidRequest.
func (t *Tracker) RequestDownload(url string) RequestID {
	url, ok := normalizeURL(url)
	if !ok {
		return InvalidRequest
	}
	if _, cached := t.icons[url]; cached {
		return AlreadySatisfied
	}
	if id, ok := t.byURL[url]; ok {
		return id
	}

	t.nextID++
	id := t.nextID
	t.byURL[url] = id

	if t.inFlight() > 0 {
		t.pending[id] = url
		return id
	}

	t.inProgress[id] = url
	t.fetcher.Fetch(id, url)
	return id
}

// DownloadCompleted records the result of a dispatched download. The best
// decodable bitmap is cached under url; when none decodes (including network
// failures, which deliver no bitmaps) url is marked failed until it is
// announced again. One pending request is then dispatched. A completion whose
// id is not on the wire for url is ignored.
func (t *Tracker) DownloadCompleted(id RequestID, url string, images []image.Image, declaredSizes []Size) {
	if u, ok := normalizeURL(url); ok {
		url = u
	}

	owner, ok := t.inProgress[id]
	if !ok {
		owner, ok = t.detached[id]
	}
	if !ok || owner != url {
		return
	}

	delete(t.inProgress, id)
	delete(t.detached, id)
	if t.byURL[url] == id {
		delete(t.byURL, url)
	}

	var hint Size
	if e, ok := t.entries[url]; ok {
		hint = e.Size
	}

	if img, size, ok := SelectBitmap(images, declaredSizes, hint); ok {
		t.icons[url] = Icon{URL: url, Image: img, Size: size}
		delete(t.failed, url)
	} else {
		t.failed[url] = true
	}

	t.dispatchPending()
	t.refresh()
}

// Stats returns a snapshot of the tracker tables.
func (t *Tracker) Stats() Stats {
	s := Stats{
		Pending:    len(t.pending),
		InProgress: t.inFlight(),
		Cached:     len(t.icons),
		Failed:     len(t.failed),
	}
	for _, e := range t.entries {
		if e.IsCandidate {
			s.Candidates++
		}
	}
	return s
}

// Idle reports whether no download is queued or in flight.
func (t *Tracker) Idle() bool {
	return len(t.pending) == 0 && t.inFlight() == 0
}

func (t *Tracker) inFlight() int {
	return len(t.inProgress) + len(t.detached)
}

func (t *Tracker) dispatchPending() {
	if len(t.pending) == 0 || t.inFlight() > 0 {
		return
	}

	next := RequestID(-1)
	for id := range t.pending {
		if next < 0 || id < next {
			next = id
		}
	}

	url := t.pending[next]
	delete(t.pending, next)
	t.inProgress[next] = url
	t.fetcher.Fetch(next, url)
}

// refresh requests the best candidate when it is neither cached, failed nor
// already requested.
func (t *Tracker) refresh() {
	best, ok := t.BestCandidate(t.touchIconsEnabled)
	if !ok {
		return
	}
	if _, cached := t.icons[best]; cached {
		return
	}
	if _, requested := t.byURL[best]; requested {
		return
	}
	t.RequestDownload(best)
}
