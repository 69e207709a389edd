package favicon

import "image"

// SelectBitmap picks the image to keep from the sibling bitmaps delivered for
// one icon URL. The largest declared size whose image decoded wins; on a tie
// the one matching hint wins, then the first delivered.
// declared may be shorter than images; missing entries use the decoded bounds.
func SelectBitmap(images []image.Image, declared []Size, hint Size) (image.Image, Size, bool) {
	best := -1
	var bestSize Size

	for i, img := range images {
		if img == nil || img.Bounds().Empty() {
			continue
		}

		size := SizeOf(img)
		if i < len(declared) && !declared[i].IsEmpty() {
			size = declared[i]
		}

		if best < 0 || betterBitmap(size, bestSize, hint) {
			best = i
			bestSize = size
		}
	}

	if best < 0 {
		return nil, Size{}, false
	}
	return images[best], bestSize, true
}

func betterBitmap(size, current, hint Size) bool {
	if size.Area() != current.Area() {
		return size.Area() > current.Area()
	}
	return !hint.IsEmpty() && size == hint && current != hint
}
