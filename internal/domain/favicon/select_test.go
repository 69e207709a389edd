package favicon

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectBitmap(t *testing.T) {
	small := newImage(16, 16)
	medium := newImage(32, 32)
	large := newImage(64, 64)
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))

	tests := []struct {
		name     string
		images   []image.Image
		declared []Size
		hint     Size
		expected image.Image
		size     Size
		ok       bool
	}{
		{
			name:     "largest declared size wins",
			images:   []image.Image{small, large, medium},
			declared: []Size{{16, 16}, {64, 64}, {32, 32}},
			expected: large,
			size:     Size{64, 64},
			ok:       true,
		},
		{
			name:     "largest sibling that fails to decode is skipped",
			images:   []image.Image{small, nil, medium},
			declared: []Size{{16, 16}, {128, 128}, {32, 32}},
			expected: medium,
			size:     Size{32, 32},
			ok:       true,
		},
		{
			name:     "empty bitmap counts as decode failure",
			images:   []image.Image{empty, small},
			declared: []Size{{64, 64}, {16, 16}},
			expected: small,
			size:     Size{16, 16},
			ok:       true,
		},
		{
			name:     "tie prefers size hint",
			images:   []image.Image{newImage(16, 32), newImage(32, 16)},
			declared: []Size{{16, 32}, {32, 16}},
			hint:     Size{32, 16},
			size:     Size{32, 16},
			ok:       true,
		},
		{
			name:     "missing declared sizes fall back to bounds",
			images:   []image.Image{large, small},
			expected: large,
			size:     Size{64, 64},
			ok:       true,
		},
		{
			name:   "nothing decodes",
			images: []image.Image{nil, empty},
			ok:     false,
		},
		{
			name: "no images delivered",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, size, ok := SelectBitmap(tt.images, tt.declared, tt.hint)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.size, size)
			if tt.expected != nil {
				assert.Same(t, tt.expected, img)
			}
		})
	}
}

func TestSize(t *testing.T) {
	assert.Equal(t, 0, Size{}.Area())
	assert.Equal(t, 0, Size{Width: -1, Height: 10}.Area())
	assert.True(t, Size{Width: 16}.IsEmpty())
	assert.Equal(t, 256, Size{16, 16}.Area())
	assert.Equal(t, "16x16", Size{16, 16}.String())
	assert.Equal(t, Size{}, SizeOf(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "favicon", KindFavicon.String())
	assert.Equal(t, "touch-icon", KindTouchIcon.String())
	assert.Equal(t, "touch-precomposed-icon", KindTouchPrecomposedIcon.String())
	assert.Equal(t, "invalid", KindInvalid.String())
}
