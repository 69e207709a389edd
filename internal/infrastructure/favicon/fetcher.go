package favicon

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/logging"
)

const (
	// DefaultFetchTimeout bounds one icon request.
	DefaultFetchTimeout = 5 * time.Second
	// DefaultMaxIconBytes caps an icon payload.
	DefaultMaxIconBytes int64 = 1 << 20

	userAgent = "pagekit/1.0 (+favicon)"
)

// ErrIconTooLarge is returned when a payload exceeds the configured limit.
var ErrIconTooLarge = errors.New("icon payload too large")

// Fetcher downloads and decodes icons. It implements port.IconFetcher;
// concurrent requests for one URL share a single download.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	group    singleflight.Group
}

// NewFetcher creates a Fetcher. Non-positive values select the defaults.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxIconBytes
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// WithClient replaces the HTTP client, keeping its timeout.
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

// Fetch downloads and decodes req.URL on its own goroutine and reports the
// result through done.
func (f *Fetcher) Fetch(ctx context.Context, req port.IconRequest, done func(port.IconResult)) {
	go func() {
		done(f.fetch(ctx, req))
	}()
}

func (f *Fetcher) fetch(ctx context.Context, req port.IconRequest) port.IconResult {
	log := logging.FromContext(ctx)
	result := port.IconResult{IconRequest: req}

	data, err := f.Load(ctx, req.URL)
	if err != nil {
		result.Err = err
		return result
	}

	images, sizes, err := Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("url", req.URL).Msg("icon payload did not decode")
		result.Err = err
		return result
	}

	result.Images = images
	result.Sizes = sizes
	log.Debug().
		Str("url", req.URL).
		Int("bytes", len(data)).
		Int("bitmaps", len(images)).
		Msg("icon fetched")
	return result
}

// Load returns the raw payload behind rawURL. data: URLs are decoded in place.
func (f *Fetcher) Load(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(strings.ToLower(rawURL), "data:") {
		return f.limit(decodeDataURL(rawURL))
	}

	v, err, shared := f.group.Do(rawURL, func() (any, error) {
		return f.download(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.FromContext(ctx).Debug().Str("url", rawURL).Msg("icon download shared")
	}
	return v.([]byte), nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := f.get(ctx, rawURL, f.maxBytes)
	return body, err
}

// get issues a GET and reads at most limit bytes of a 200 response. It
// returns the final URL after redirects.
func (f *Fetcher) get(ctx context.Context, rawURL string, limit int64) ([]byte, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(data)) > limit {
		return nil, nil, fmt.Errorf("fetch %s: %w", rawURL, ErrIconTooLarge)
	}
	if len(data) == 0 {
		return nil, nil, ErrEmptyPayload
	}

	return data, resp.Request.URL, nil
}

func (f *Fetcher) limit(data []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrIconTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}

// decodeDataURL decodes an RFC 2397 data URL.
func decodeDataURL(raw string) ([]byte, error) {
	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		if unescaped, err := url.PathUnescape(payload); err == nil {
			payload = unescaped
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return []byte(data), nil
}
