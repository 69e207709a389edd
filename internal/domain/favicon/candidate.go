// Package favicon tracks favicon candidates of a document and selects the
// icon to show for it.
package favicon

import (
	"fmt"
	"image"
	"net/url"
	"strings"
)

// Kind classifies a candidate by the link relation that declared it.
type Kind int

const (
	KindInvalid Kind = iota
	KindFavicon
	KindTouchIcon
	KindTouchPrecomposedIcon
)

func (k Kind) String() string {
	switch k {
	case KindFavicon:
		return "favicon"
	case KindTouchIcon:
		return "touch-icon"
	case KindTouchPrecomposedIcon:
		return "touch-precomposed-icon"
	default:
		return "invalid"
	}
}

// Size is a declared or decoded icon size in pixels.
type Size struct {
	Width  int
	Height int
}

// Area returns Width*Height, zero for unknown sizes.
func (s Size) Area() int {
	if s.Width <= 0 || s.Height <= 0 {
		return 0
	}
	return s.Width * s.Height
}

// IsEmpty reports whether the size is unknown.
func (s Size) IsEmpty() bool {
	return s.Area() == 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// SizeOf returns the size of an image's bounds.
func SizeOf(img image.Image) Size {
	if img == nil {
		return Size{}
	}
	b := img.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// Candidate is a document-declared icon URL.
type Candidate struct {
	URL  string
	Kind Kind
	// Size is the largest declared size for multi-size icons.
	Size        Size
	IsCandidate bool
	MultiSize   bool
}

// IsValid reports whether the candidate has a URL and a known kind.
func (c Candidate) IsValid() bool {
	return c.URL != "" && c.Kind != KindInvalid
}

// Icon is a decoded icon stored in the tracker cache.
// The zero value means "no icon".
type Icon struct {
	URL   string
	Image image.Image
	Size  Size
}

// IsNull reports whether the icon carries no image.
func (i Icon) IsNull() bool {
	return i.Image == nil
}

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"data":  true,
}

// normalizeURL validates a candidate URL and returns its canonical form.
func normalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if !allowedSchemes[scheme] {
		return "", false
	}
	if scheme != "data" && u.Host == "" {
		return "", false
	}
	u.Scheme = scheme
	u.Fragment = ""
	return u.String(), true
}
