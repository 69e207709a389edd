package favicon

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_StoreIconExportsNormalizedPNG(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, 32)

	err := c.StoreIcon(context.Background(), "https://example.com/favicon.ico", solid(64, 48, color.White))
	require.NoError(t, err)
	c.Close()

	path := c.DiskPath("https://example.com/favicon.ico")
	require.True(t, strings.HasPrefix(filepath.Base(path), "example.com-"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestCache_GetFallsBackToDisk(t *testing.T) {
	dir := t.TempDir()
	writer := NewCache(dir, 0)
	require.NoError(t, writer.StoreIcon(context.Background(), "https://example.com/a.png", solid(8, 8, color.Black)))
	writer.Close()

	reader := NewCache(dir, 0)
	defer reader.Close()

	data, ok := reader.Get("https://example.com/a.png")
	require.True(t, ok)
	assert.NotEmpty(t, data)
	assert.Equal(t, 1, reader.Size())

	_, ok = reader.Get("https://example.com/other.png")
	assert.False(t, ok)
}

func TestCache_MemoryOnlyAndClosed(t *testing.T) {
	c := NewCache("", 16)

	require.NoError(t, c.StoreIcon(context.Background(), "data:image/png;base64,xx", solid(4, 4, color.White)))
	assert.Empty(t, c.DiskPath("data:image/png;base64,xx"))
	_, ok := c.Get("data:image/png;base64,xx")
	assert.True(t, ok)

	assert.Error(t, c.StoreIcon(context.Background(), "", solid(1, 1, color.White)))

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.StoreIcon(context.Background(), "https://example.com/x.png", solid(1, 1, color.White)), ErrCacheClosed)
}

func TestFilenameForURL(t *testing.T) {
	a := FilenameForURL("https://Example.COM/favicon.ico")
	b := FilenameForURL("https://example.com/favicon.ico")

	assert.True(t, strings.HasPrefix(a, "example.com-"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b, "hash covers the full url")
	assert.Equal(t, b, FilenameForURL("https://example.com/favicon.ico"))
	assert.True(t, strings.HasPrefix(FilenameForURL("data:image/png;base64,AAAA"), "data-"))
}
