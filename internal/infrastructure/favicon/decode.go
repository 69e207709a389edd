package favicon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"github.com/bnema/pagekit/internal/domain/favicon"
)

var (
	// ErrEmptyPayload is returned when a fetch delivered no bytes.
	ErrEmptyPayload = errors.New("empty icon payload")
	// ErrUnsupportedFormat is returned for payloads that are not a raster icon.
	ErrUnsupportedFormat = errors.New("unsupported icon format")
)

// Decode turns an icon payload into its sibling bitmaps and their declared
// sizes. ICO files yield one entry per directory record; a sibling that
// fails to decode is reported as a nil image so the caller can skip it.
// Other formats yield a single bitmap whose declared size is its bounds.
func Decode(data []byte) ([]image.Image, []favicon.Size, error) {
	if len(data) == 0 {
		return nil, nil, ErrEmptyPayload
	}

	if hasICOHeader(data) {
		return decodeICO(data)
	}

	mt := mimetype.Detect(data)

	var (
		img image.Image
		err error
	)
	switch {
	case mt.Is("image/x-icon"), mt.Is("image/vnd.microsoft.icon"):
		return decodeICO(data)
	case mt.Is("image/png"):
		img, err = png.Decode(bytes.NewReader(data))
	case mt.Is("image/gif"):
		img, err = gif.Decode(bytes.NewReader(data))
	case mt.Is("image/jpeg"):
		img, err = jpeg.Decode(bytes.NewReader(data))
	case mt.Is("image/bmp"):
		img, err = bmp.Decode(bytes.NewReader(data))
	case mt.Is("image/webp"):
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", mt.String(), err)
	}

	return []image.Image{img}, []favicon.Size{favicon.SizeOf(img)}, nil
}
