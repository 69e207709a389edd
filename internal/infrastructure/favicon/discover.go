package favicon

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bnema/pagekit/internal/domain/favicon"
	"github.com/bnema/pagekit/internal/logging"
)

const maxPageBytes int64 = 4 << 20

// Discover downloads pageURL and returns the icon candidates it declares.
func (f *Fetcher) Discover(ctx context.Context, pageURL string) ([]favicon.Candidate, error) {
	body, final, err := f.get(ctx, pageURL, maxPageBytes)
	if err != nil {
		return nil, err
	}

	base := pageURL
	if final != nil {
		base = final.String()
	}

	candidates, err := ParseIconLinks(bytes.NewReader(body), base)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Str("url", base).
		Int("candidates", len(candidates)).
		Msg("discovered icon links")
	return candidates, nil
}

// ParseIconLinks extracts icon, shortcut icon, apple-touch-icon and
// apple-touch-icon-precomposed links from an HTML document. Relative hrefs
// resolve against <base href> or pageURL. When the page declares no plain
// favicon the implicit /favicon.ico of its origin is appended.
func ParseIconLinks(r io.Reader, pageURL string) ([]favicon.Candidate, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base := page
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := page.Parse(strings.TrimSpace(href)); err == nil {
			base = u
		}
	}

	var (
		candidates []favicon.Candidate
		seen       = make(map[string]bool)
		hasFavicon bool
	)

	doc.Find("link[rel][href]").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		kind := linkKind(rel)
		if kind == favicon.KindInvalid {
			return
		}

		href, _ := s.Attr("href")
		u, err := base.Parse(strings.TrimSpace(href))
		if err != nil || href == "" {
			return
		}
		u.Fragment = ""
		abs := u.String()
		if seen[abs] {
			return
		}
		seen[abs] = true

		sizesAttr, _ := s.Attr("sizes")
		size, multi := ParseSizes(sizesAttr)

		candidates = append(candidates, favicon.Candidate{
			URL:       abs,
			Kind:      kind,
			Size:      size,
			MultiSize: multi,
		})
		if kind == favicon.KindFavicon {
			hasFavicon = true
		}
	})

	if !hasFavicon && (page.Scheme == "http" || page.Scheme == "https") {
		implicit := (&url.URL{Scheme: page.Scheme, Host: page.Host, Path: "/favicon.ico"}).String()
		if !seen[implicit] {
			candidates = append(candidates, favicon.Candidate{URL: implicit, Kind: favicon.KindFavicon})
		}
	}

	return candidates, nil
}

func linkKind(rel string) favicon.Kind {
	kind := favicon.KindInvalid
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		switch token {
		case "apple-touch-icon-precomposed":
			return favicon.KindTouchPrecomposedIcon
		case "apple-touch-icon":
			kind = favicon.KindTouchIcon
		case "icon":
			if kind == favicon.KindInvalid {
				kind = favicon.KindFavicon
			}
		}
	}
	return kind
}

// ParseSizes reads a sizes attribute ("16x16 32x32", "any"). It returns the
// largest listed size and whether the link covers more than one size.
func ParseSizes(attr string) (favicon.Size, bool) {
	var (
		best     favicon.Size
		count    int
		scalable bool
	)
	for _, token := range strings.Fields(strings.ToLower(attr)) {
		if token == "any" {
			scalable = true
			continue
		}
		w, h, ok := strings.Cut(token, "x")
		if !ok {
			continue
		}
		width, errW := strconv.Atoi(w)
		height, errH := strconv.Atoi(h)
		if errW != nil || errH != nil || width <= 0 || height <= 0 {
			continue
		}
		count++
		if s := (favicon.Size{Width: width, Height: height}); s.Area() > best.Area() {
			best = s
		}
	}
	return best, scalable || count > 1
}
