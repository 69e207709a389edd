package favicon

import (
	"context"
	"encoding/base64"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pagekit/internal/application/port"
)

func fetchSync(t *testing.T, f *Fetcher, rawURL string) port.IconResult {
	t.Helper()
	ch := make(chan port.IconResult, 1)
	f.Fetch(context.Background(), port.IconRequest{DocumentID: "doc", RequestID: 7, URL: rawURL}, func(r port.IconResult) {
		ch <- r
	})
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not complete")
		return port.IconResult{}
	}
}

func TestFetcher_Fetch(t *testing.T) {
	icon := pngBytes(t, solid(16, 16, color.White))

	mux := http.NewServeMux()
	mux.HandleFunc("/favicon.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(icon)
	})
	mux.HandleFunc("/missing.ico", http.NotFound)
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/huge.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	})
	mux.HandleFunc("/empty.ico", func(w http.ResponseWriter, _ *http.Request) {})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher(time.Second, 1024).WithClient(srv.Client())

	t.Run("decodes payload", func(t *testing.T) {
		r := fetchSync(t, f, srv.URL+"/favicon.png")
		require.NoError(t, r.Err)
		assert.Equal(t, "doc", r.DocumentID)
		assert.EqualValues(t, 7, r.RequestID)
		require.Len(t, r.Images, 1)
		assert.Equal(t, 16, r.Sizes[0].Width)
	})

	t.Run("non-200 status", func(t *testing.T) {
		r := fetchSync(t, f, srv.URL+"/missing.ico")
		assert.ErrorContains(t, r.Err, "404")
		assert.Empty(t, r.Images)
	})

	t.Run("not an image", func(t *testing.T) {
		r := fetchSync(t, f, srv.URL+"/page.html")
		assert.ErrorIs(t, r.Err, ErrUnsupportedFormat)
	})

	t.Run("payload over limit", func(t *testing.T) {
		r := fetchSync(t, f, srv.URL+"/huge.png")
		assert.ErrorIs(t, r.Err, ErrIconTooLarge)
	})

	t.Run("empty body", func(t *testing.T) {
		r := fetchSync(t, f, srv.URL+"/empty.ico")
		assert.ErrorIs(t, r.Err, ErrEmptyPayload)
	})
}

func TestFetcher_DataURL(t *testing.T) {
	icon := pngBytes(t, solid(2, 2, color.Black))
	f := NewFetcher(0, 0)

	r := fetchSync(t, f, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(icon))
	require.NoError(t, r.Err)
	require.Len(t, r.Images, 1)

	data, err := f.Load(context.Background(), "data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	_, err = f.Load(context.Background(), "data:image/png;base64")
	assert.Error(t, err)
}

func TestFetcher_SharesConcurrentDownloads(t *testing.T) {
	icon := pngBytes(t, solid(4, 4, color.White))
	var hits atomic.Int32
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write(icon)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 0).WithClient(srv.Client())

	const callers = 4
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.Load(context.Background(), srv.URL+"/favicon.png")
			assert.NoError(t, err)
		}()
	}

	// Give every caller time to join the in-flight download.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}
