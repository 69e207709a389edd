package favicon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/bmp"

	"github.com/bnema/pagekit/internal/domain/favicon"
)

const (
	icoHeaderLen    = 6
	icoEntryLen     = 16
	bmpFileHeadLen  = 14
	bmpInfoHeadLen  = 40
	icoTypeIcon     = 1
	icoTypeCursor   = 2
	maxICOEntries   = 64
	bmpCompressNone = 0
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

var errICOEntry = errors.New("invalid ico entry")

type icoEntry struct {
	width, height int
	bitCount      int
	size, offset  uint32
}

func hasICOHeader(data []byte) bool {
	if len(data) < icoHeaderLen {
		return false
	}
	le := binary.LittleEndian
	typ := le.Uint16(data[2:4])
	return le.Uint16(data[0:2]) == 0 && (typ == icoTypeIcon || typ == icoTypeCursor) && le.Uint16(data[4:6]) > 0
}

func decodeICO(data []byte) ([]image.Image, []favicon.Size, error) {
	if !hasICOHeader(data) {
		return nil, nil, fmt.Errorf("%w: bad ico header", ErrUnsupportedFormat)
	}

	le := binary.LittleEndian
	count := int(le.Uint16(data[4:6]))
	if count > maxICOEntries {
		count = maxICOEntries
	}
	if len(data) < icoHeaderLen+count*icoEntryLen {
		return nil, nil, fmt.Errorf("%w: truncated ico directory", ErrUnsupportedFormat)
	}

	images := make([]image.Image, 0, count)
	sizes := make([]favicon.Size, 0, count)

	for i := 0; i < count; i++ {
		rec := data[icoHeaderLen+i*icoEntryLen:]
		e := icoEntry{
			width:    dimension(rec[0]),
			height:   dimension(rec[1]),
			bitCount: int(le.Uint16(rec[6:8])),
			size:     le.Uint32(rec[8:12]),
			offset:   le.Uint32(rec[12:16]),
		}

		img, err := decodeICOEntry(data, e)
		if err != nil {
			img = nil
		}
		images = append(images, img)
		sizes = append(sizes, favicon.Size{Width: e.width, Height: e.height})
	}

	return images, sizes, nil
}

// dimension maps the one-byte ICO dimension; 0 means 256.
func dimension(b byte) int {
	if b == 0 {
		return 256
	}
	return int(b)
}

func decodeICOEntry(data []byte, e icoEntry) (image.Image, error) {
	end := uint64(e.offset) + uint64(e.size)
	if e.size == 0 || end > uint64(len(data)) {
		return nil, errICOEntry
	}
	payload := data[e.offset:end]

	if bytes.HasPrefix(payload, pngSignature) {
		return png.Decode(bytes.NewReader(payload))
	}
	return decodeDIB(payload)
}

// decodeDIB decodes a headerless bitmap as stored in ICO files: the height
// covers both the color bitmap and the AND mask.
func decodeDIB(dib []byte) (image.Image, error) {
	if len(dib) < bmpInfoHeadLen {
		return nil, errICOEntry
	}
	le := binary.LittleEndian
	headerLen := le.Uint32(dib[0:4])
	if headerLen < bmpInfoHeadLen || uint64(headerLen) > uint64(len(dib)) {
		return nil, errICOEntry
	}
	width := int(int32(le.Uint32(dib[4:8])))
	height := int(int32(le.Uint32(dib[8:12]))) / 2
	bpp := int(le.Uint16(dib[14:16]))
	compression := le.Uint32(dib[16:20])
	colorsUsed := le.Uint32(dib[32:36])

	if width <= 0 || height <= 0 || compression != bmpCompressNone {
		return nil, errICOEntry
	}

	if bpp == 32 {
		return decodeBGRA(dib[headerLen:], width, height)
	}

	paletteLen := uint32(0)
	if bpp <= 8 {
		paletteLen = colorsUsed
		if paletteLen == 0 {
			paletteLen = 1 << bpp
		}
		paletteLen *= 4
	}

	header := make([]byte, bmpFileHeadLen, bmpFileHeadLen+len(dib))
	header[0], header[1] = 'B', 'M'
	le.PutUint32(header[2:6], uint32(bmpFileHeadLen+len(dib)))
	le.PutUint32(header[10:14], bmpFileHeadLen+headerLen+paletteLen)

	file := append(header, dib...)
	le.PutUint32(file[bmpFileHeadLen+8:bmpFileHeadLen+12], uint32(height))

	return bmp.Decode(bytes.NewReader(file))
}

// decodeBGRA reads a bottom-up 32-bit BGRA bitmap keeping its alpha channel.
func decodeBGRA(pix []byte, width, height int) (image.Image, error) {
	stride := width * 4
	if len(pix) < stride*height {
		return nil, errICOEntry
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := pix[(height-1-y)*stride:]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4]
			img.SetNRGBA(x, y, color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]})
		}
	}
	return img, nil
}
