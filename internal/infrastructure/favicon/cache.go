package favicon

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/pagekit/internal/infrastructure/cache"
	"github.com/bnema/pagekit/internal/logging"
)

const (
	// diskWriteBufferSize defines the capacity of the icon write channel.
	diskWriteBufferSize = 100
	// Bounds of the in-memory PNG cache.
	memCacheMaxEntries = 512
	memCacheMaxBytes   = 8 << 20
	// File permissions for the icon export directory.
	diskCacheDirPerm  = 0750
	diskCacheFilePerm = 0600
)

// ErrCacheClosed is returned by StoreIcon after Close.
var ErrCacheClosed = errors.New("icon cache closed")

// diskWrite represents an icon to be written to disk asynchronously.
type diskWrite struct {
	path string
	data []byte
}

// Cache exports decoded icons as PNG files keyed by icon URL. It keeps the
// encoded bytes in memory and writes them to diskDir in the background.
// It implements port.IconStore.
type Cache struct {
	memCache   *cache.LRU[string, []byte]
	diskDir    string
	exportSize int
	writeChan  chan diskWrite
	writers    sync.WaitGroup
	closed     bool
	mu         sync.RWMutex
}

// NewCache creates an icon cache. If diskDir is empty, only in-memory caching
// is used. A positive exportSize normalizes icons to that square size.
func NewCache(diskDir string, exportSize int) *Cache {
	c := &Cache{
		memCache:   cache.NewCostLRU[string, []byte](memCacheMaxEntries, memCacheMaxBytes, byteCost),
		diskDir:    diskDir,
		exportSize: exportSize,
		writeChan:  make(chan diskWrite, diskWriteBufferSize),
	}

	if diskDir != "" {
		c.writers.Add(1)
		go c.diskWriter()
	}

	return c
}

func byteCost(b []byte) int64 { return int64(len(b)) }

// StoreIcon encodes img as PNG and queues it for disk export.
func (c *Cache) StoreIcon(ctx context.Context, iconURL string, img image.Image) error {
	if iconURL == "" || img == nil {
		return fmt.Errorf("store icon: missing url or image")
	}

	if c.exportSize > 0 {
		img = Normalize(img, c.exportSize)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode icon: %w", err)
	}
	data := buf.Bytes()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	c.memCache.Set(iconURL, data)

	if c.diskDir == "" {
		return nil
	}
	select {
	case c.writeChan <- diskWrite{path: c.DiskPath(iconURL), data: data}:
	default:
		logging.FromContext(ctx).Debug().Str("url", iconURL).Msg("icon write queue full, skipping disk export")
	}
	return nil
}

// Get returns the exported PNG bytes for an icon URL, from memory or disk.
func (c *Cache) Get(iconURL string) ([]byte, bool) {
	if iconURL == "" {
		return nil, false
	}

	if data, ok := c.memCache.Get(iconURL); ok {
		return data, true
	}

	path := c.DiskPath(iconURL)
	if path == "" {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil, false
	}

	c.memCache.Set(iconURL, data)
	return data, true
}

// DiskPath returns the export path for an icon URL, or "" when disk export
// is disabled.
func (c *Cache) DiskPath(iconURL string) string {
	if c.diskDir == "" || iconURL == "" {
		return ""
	}
	return filepath.Join(c.diskDir, FilenameForURL(iconURL))
}

// FilenameForURL derives a stable file name from an icon URL: the sanitized
// host followed by a short hash of the full URL.
func FilenameForURL(iconURL string) string {
	sum := sha256.Sum256([]byte(iconURL))
	hash := hex.EncodeToString(sum[:8])

	host := "data"
	if u, err := url.Parse(iconURL); err == nil && u.Hostname() != "" {
		host = sanitizeHost(u.Hostname())
	}
	return host + "-" + hash + ".png"
}

func sanitizeHost(host string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, host)
}

// Size returns the number of entries in the in-memory cache.
func (c *Cache) Size() int {
	return c.memCache.Len()
}

// Close stops accepting icons and waits for queued disk writes.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.writeChan)
	c.mu.Unlock()

	c.writers.Wait()
}

// writeToDisk atomically writes icon data to disk.
func (c *Cache) writeToDisk(w diskWrite) {
	if err := os.MkdirAll(c.diskDir, diskCacheDirPerm); err != nil {
		return
	}

	tempPath := w.path + ".tmp"
	if err := os.WriteFile(tempPath, w.data, diskCacheFilePerm); err != nil {
		return
	}
	if err := os.Rename(tempPath, w.path); err != nil {
		_ = os.Remove(tempPath)
	}
}

// diskWriter processes async write requests.
func (c *Cache) diskWriter() {
	defer c.writers.Done()
	for write := range c.writeChan {
		c.writeToDisk(write)
	}
}
