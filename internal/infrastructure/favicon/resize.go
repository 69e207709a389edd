// Package favicon provides icon fetching, decoding, discovery and export.
package favicon

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

const (
	// DefaultExportSize is the edge length of exported icons.
	DefaultExportSize = 32
)

// Normalize center-crops img to a square and scales it to size x size using
// CatmullRom interpolation.
func Normalize(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if img == nil || size <= 0 {
		return dst
	}

	src := cropImage(img, squareCrop(img.Bounds()))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func squareCrop(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	switch {
	case w > h:
		offset := (w - h) / 2
		return image.Rect(b.Min.X+offset, b.Min.Y, b.Min.X+offset+h, b.Max.Y)
	case h > w:
		offset := (h - w) / 2
		return image.Rect(b.Min.X, b.Min.Y+offset, b.Max.X, b.Min.Y+offset+w)
	default:
		return b
	}
}

// ResizePNG decodes PNG data, resizes it to a square of the given size,
// and saves the result to dstPath.
func ResizePNG(data []byte, dstPath string, size int) error {
	srcImg, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode png: %w", err)
	}

	dstFile, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, diskCacheFilePerm)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() { _ = dstFile.Close() }()

	if err := png.Encode(dstFile, Normalize(srcImg, size)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	return nil
}

// cropImage returns a cropped portion of the source image.
func cropImage(src image.Image, rect image.Rectangle) image.Image {
	if subImager, ok := src.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return subImager.SubImage(rect)
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			dst.Set(x, y, src.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	return dst
}
