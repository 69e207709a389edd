package favicon

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchCall struct {
	id  RequestID
	url string
}

type recordingFetcher struct {
	calls []fetchCall
}

func (f *recordingFetcher) Fetch(id RequestID, url string) {
	f.calls = append(f.calls, fetchCall{id: id, url: url})
}

func newImage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestTracker_AnnounceUpdatesInPlace(t *testing.T) {
	tr := NewTracker(&recordingFetcher{}, true)

	tr.AnnounceCandidates([]Candidate{
		{URL: "https://example.com/a.ico", Kind: KindFavicon, Size: Size{16, 16}},
	})
	tr.AnnounceCandidates([]Candidate{
		{URL: "https://example.com/a.ico", Kind: KindTouchIcon, Size: Size{180, 180}, MultiSize: true},
	})

	list := tr.Candidates(true)
	require.Len(t, list, 1)
	assert.Equal(t, KindTouchIcon, list[0].Kind)
	assert.Equal(t, Size{180, 180}, list[0].Size)
	assert.True(t, list[0].MultiSize)
	assert.True(t, list[0].IsCandidate)
}

func TestTracker_AnnounceDropsMalformedURLs(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, true)

	tr.AnnounceCandidates([]Candidate{
		{URL: "", Kind: KindFavicon},
		{URL: "/relative.ico", Kind: KindFavicon},
		{URL: "http://[::1", Kind: KindFavicon},
		{URL: "ftp://example.com/x.ico", Kind: KindFavicon},
		{URL: "https://example.com/ok.ico", Kind: KindInvalid},
	})

	assert.Empty(t, tr.Candidates(false))
	assert.False(t, tr.HasCandidate())
	assert.Empty(t, f.calls)
}

func TestTracker_BestCandidate(t *testing.T) {
	candidates := []Candidate{
		{URL: "https://example.com/favicon.ico", Kind: KindFavicon, Size: Size{16, 16}},
		{URL: "https://example.com/favicon-32.png", Kind: KindFavicon, Size: Size{32, 32}},
		{URL: "https://example.com/touch.png", Kind: KindTouchIcon, Size: Size{180, 180}},
		{URL: "https://example.com/touch-pre.png", Kind: KindTouchPrecomposedIcon, Size: Size{57, 57}},
	}

	tests := []struct {
		name     string
		touch    bool
		input    []Candidate
		expected string
		found    bool
	}{
		{
			name:     "touch enabled prefers precomposed",
			touch:    true,
			input:    candidates,
			expected: "https://example.com/touch-pre.png",
			found:    true,
		},
		{
			name:     "touch disabled only favicons, largest wins",
			touch:    false,
			input:    candidates,
			expected: "https://example.com/favicon-32.png",
			found:    true,
		},
		{
			name:     "touch enabled falls back to touch icon",
			touch:    true,
			input:    candidates[:3],
			expected: "https://example.com/touch.png",
			found:    true,
		},
		{
			name:  "touch disabled with only touch icons",
			touch: false,
			input: candidates[2:],
			found: false,
		},
		{
			name:  "tie keeps announcement order",
			touch: false,
			input: []Candidate{
				{URL: "https://example.com/first.ico", Kind: KindFavicon},
				{URL: "https://example.com/second.ico", Kind: KindFavicon},
			},
			expected: "https://example.com/first.ico",
			found:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(&recordingFetcher{}, tt.touch)
			tr.AnnounceCandidates(tt.input)

			got, ok := tr.BestCandidate(tt.touch)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)

			again, _ := tr.BestCandidate(tt.touch)
			assert.Equal(t, got, again, "selection must be idempotent")
		})
	}
}

func TestTracker_AnnounceRequestsBestCandidate(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	tr.AnnounceCandidates([]Candidate{
		{URL: "https://example.com/favicon.ico", Kind: KindFavicon},
		{URL: "https://example.com/touch.png", Kind: KindTouchIcon},
	})

	require.Len(t, f.calls, 1)
	assert.Equal(t, "https://example.com/favicon.ico", f.calls[0].url)

	// Same best candidate, nothing new is dispatched.
	tr.AnnounceCandidates([]Candidate{{URL: "https://example.com/favicon.ico", Kind: KindFavicon}})
	assert.Len(t, f.calls, 1)
}

func TestTracker_RequestDownloadDedup(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	first := tr.RequestDownload("https://example.com/a.ico")
	second := tr.RequestDownload("https://example.com/a.ico")

	assert.NotEqual(t, AlreadySatisfied, first)
	assert.Equal(t, first, second)
	assert.Len(t, f.calls, 1)
}

func TestTracker_SingleFetchInFlight(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	a := tr.RequestDownload("https://example.com/a.ico")
	b := tr.RequestDownload("https://example.com/b.ico")
	c := tr.RequestDownload("https://example.com/c.ico")

	require.Len(t, f.calls, 1)
	assert.Equal(t, a, f.calls[0].id)
	assert.Equal(t, Stats{Pending: 2, InProgress: 1}, tr.Stats())

	tr.DownloadCompleted(a, "https://example.com/a.ico", []image.Image{newImage(16, 16)}, nil)
	require.Len(t, f.calls, 2)
	assert.Equal(t, fetchCall{id: b, url: "https://example.com/b.ico"}, f.calls[1])

	tr.DownloadCompleted(b, "https://example.com/b.ico", nil, nil)
	require.Len(t, f.calls, 3)
	assert.Equal(t, fetchCall{id: c, url: "https://example.com/c.ico"}, f.calls[2])

	tr.DownloadCompleted(c, "https://example.com/c.ico", []image.Image{newImage(8, 8)}, nil)
	assert.True(t, tr.Idle())
	assert.Len(t, f.calls, 3)
}

func TestTracker_RequestDownloadRejectsMalformedURL(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	for _, raw := range []string{"", "not a url", "/relative.ico", "file:///etc/icon.png", "https:///no-host.ico"} {
		assert.Equal(t, InvalidRequest, tr.RequestDownload(raw), raw)
	}
	assert.Empty(t, f.calls)
	assert.Equal(t, Stats{}, tr.Stats())
}

func TestTracker_DownloadCompletedIgnoresForeignResult(t *testing.T) {
	tests := []struct {
		name string
		id   func(RequestID) RequestID
		url  string
	}{
		{name: "unknown id", id: func(id RequestID) RequestID { return id + 7 }, url: "https://example.com/a.ico"},
		{name: "id of another url", id: func(id RequestID) RequestID { return id }, url: "https://example.com/b.ico"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &recordingFetcher{}
			tr := NewTracker(f, false)

			a := tr.RequestDownload("https://example.com/a.ico")
			tr.RequestDownload("https://example.com/c.ico")

			tr.DownloadCompleted(tt.id(a), tt.url, []image.Image{newImage(16, 16)}, nil)

			assert.Equal(t, Stats{Pending: 1, InProgress: 1}, tr.Stats())
			assert.Len(t, f.calls, 1, "the slot stays taken")
			assert.True(t, tr.IconFor(tt.url).IsNull())
		})
	}
}

func TestTracker_CacheCorrectness(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	id := tr.RequestDownload("https://example.com/a.ico")
	img := newImage(32, 32)
	tr.DownloadCompleted(id, "https://example.com/a.ico", []image.Image{img}, []Size{{32, 32}})

	icon := tr.IconFor("https://example.com/a.ico")
	assert.False(t, icon.IsNull())
	assert.Same(t, img, icon.Image)
	assert.Equal(t, Size{32, 32}, icon.Size)

	assert.Equal(t, AlreadySatisfied, tr.RequestDownload("https://example.com/a.ico"))
	assert.Len(t, f.calls, 1)
}

func TestTracker_IconForPageIcon(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	assert.True(t, tr.IconFor("").IsNull())

	tr.AnnounceCandidates([]Candidate{{URL: "https://example.com/favicon.ico", Kind: KindFavicon}})
	require.Len(t, f.calls, 1)
	assert.True(t, tr.IconFor("").IsNull(), "nothing cached yet")

	tr.DownloadCompleted(f.calls[0].id, f.calls[0].url, []image.Image{newImage(16, 16)}, nil)
	assert.False(t, tr.IconFor("").IsNull())
	assert.True(t, tr.IconFor("https://example.com/other.ico").IsNull())
}

func TestTracker_FailedCandidateFallsBackAndRetriesOnReannounce(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, true)

	tr.AnnounceCandidates([]Candidate{
		{URL: "https://example.com/touch.png", Kind: KindTouchIcon},
		{URL: "https://example.com/favicon.ico", Kind: KindFavicon},
	})
	require.Len(t, f.calls, 1)
	assert.Equal(t, "https://example.com/touch.png", f.calls[0].url)

	// Every sibling fails to decode.
	tr.DownloadCompleted(f.calls[0].id, f.calls[0].url, []image.Image{nil}, []Size{{180, 180}})
	assert.True(t, tr.IsFailed("https://example.com/touch.png"))

	best, ok := tr.BestCandidate(true)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/favicon.ico", best)
	require.Len(t, f.calls, 2, "next best candidate is fetched")
	assert.Equal(t, "https://example.com/favicon.ico", f.calls[1].url)
	tr.DownloadCompleted(f.calls[1].id, f.calls[1].url, []image.Image{newImage(16, 16)}, nil)

	// No automatic retry of the failed URL.
	assert.Len(t, f.calls, 2)

	tr.AnnounceCandidates([]Candidate{{URL: "https://example.com/touch.png", Kind: KindTouchIcon}})
	assert.False(t, tr.IsFailed("https://example.com/touch.png"))
	require.Len(t, f.calls, 3)
	assert.Equal(t, "https://example.com/touch.png", f.calls[2].url)
}

func TestTracker_ResetKeepsCacheAndHonorsLateCompletion(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	tr.AnnounceCandidates([]Candidate{{URL: "https://old.example/favicon.ico", Kind: KindFavicon}})
	require.Len(t, f.calls, 1)
	oldCall := f.calls[0]

	tr.ResetCandidates()
	assert.False(t, tr.HasCandidate())
	info, ok := tr.CandidateInfo("https://old.example/favicon.ico")
	require.True(t, ok)
	assert.False(t, info.IsCandidate)

	// New navigation announces a different icon; the old fetch still holds the slot.
	tr.AnnounceCandidates([]Candidate{{URL: "https://new.example/favicon.ico", Kind: KindFavicon}})
	assert.Len(t, f.calls, 1)
	assert.Equal(t, 1, tr.Stats().Pending)

	tr.DownloadCompleted(oldCall.id, oldCall.url, []image.Image{newImage(16, 16)}, nil)

	assert.False(t, tr.IconFor("https://old.example/favicon.ico").IsNull(), "late result is cached")
	assert.True(t, tr.IconFor("").IsNull(), "old icon is not the page icon")
	require.Len(t, f.calls, 2)
	assert.Equal(t, "https://new.example/favicon.ico", f.calls[1].url)
}

func TestTracker_ResetDedupsAgainstDetachedFetch(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	id := tr.RequestDownload("https://example.com/favicon.ico")
	tr.ResetCandidates()

	assert.Equal(t, id, tr.RequestDownload("https://example.com/favicon.ico"))
	assert.Len(t, f.calls, 1)
}

func TestTracker_SetTouchIconsEnabledRefreshes(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	tr.AnnounceCandidates([]Candidate{{URL: "https://example.com/touch.png", Kind: KindTouchIcon}})
	assert.Empty(t, f.calls)

	tr.SetTouchIconsEnabled(true)
	require.Len(t, f.calls, 1)
	assert.Equal(t, "https://example.com/touch.png", f.calls[0].url)
}

func TestTracker_Clear(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	id := tr.RequestDownload("https://example.com/a.ico")
	tr.DownloadCompleted(id, "https://example.com/a.ico", []image.Image{newImage(16, 16)}, nil)
	tr.Clear()

	assert.True(t, tr.IconFor("https://example.com/a.ico").IsNull())
	assert.Equal(t, Stats{}, tr.Stats())
}

func TestTracker_ClearIgnoresLateResult(t *testing.T) {
	f := &recordingFetcher{}
	tr := NewTracker(f, false)

	id := tr.RequestDownload("https://example.com/a.ico")
	tr.Clear()
	assert.True(t, tr.Idle())

	tr.DownloadCompleted(id, "https://example.com/a.ico", []image.Image{newImage(16, 16)}, nil)
	assert.Equal(t, Stats{}, tr.Stats())

	// Request ids restart after a clear only in a new tracker; this one keeps counting.
	next := tr.RequestDownload("https://example.com/b.ico")
	assert.NotEqual(t, id, next)
	assert.Equal(t, Stats{InProgress: 1}, tr.Stats())
}
