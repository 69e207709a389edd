// Package download holds the pure download rules: disposition, filename
// resolution and transfer state.
package download

import (
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultFilename is used when no valid filename can be determined.
	DefaultFilename = "download"
)

// SanitizeFilename sanitizes a filename to prevent path traversal attacks.
// It extracts only the base name and handles edge cases like "." or "..".
func SanitizeFilename(name string) string {
	// filepath.Base only handles the OS-native separator, so on Linux
	// backslashes would not be treated as path separators.
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(name)

	clean := filepath.Base(name)
	if clean == "." || clean == ".." || clean == "" || clean == "/" {
		return DefaultFilename
	}

	return clean
}

// SanitizeFilenameWithExtension sanitizes a filename and adds an extension
// inferred from the MIME type if the filename has no extension.
func SanitizeFilenameWithExtension(name, mimeType string) string {
	clean := SanitizeFilename(name)
	if filepath.Ext(clean) == "" {
		if ext := GetExtensionFromMimeType(mimeType); ext != "" {
			return clean + ext
		}
	}

	return clean
}

// preferredExtensions maps MIME types whose stdlib extension list is
// platform-dependent (alphabetical order) to the canonical extension.
var preferredExtensions = map[string]string{
	"text/html":                ".html",
	"text/plain":               ".txt",
	"text/xml":                 ".xml",
	"application/xhtml+xml":    ".xhtml",
	"application/zip":          ".zip",
	"image/jpeg":               ".jpg",
	"image/svg+xml":            ".svg",
	"image/x-icon":             ".ico",
	"audio/mpeg":               ".mp3",
	"video/mp4":                ".mp4",
	"application/octet-stream": ".bin",
}

// GetExtensionFromMimeType returns a file extension for a given MIME type.
// Returns empty string if MIME type is unknown or empty.
// Handles MIME types with parameters (e.g., "application/pdf; charset=binary").
func GetExtensionFromMimeType(mimeType string) string {
	if mimeType == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || mediaType == "" {
		return ""
	}

	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}

	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}

	// The system MIME database is often sparse; fall back to the
	// detector's built-in table.
	if known := mimetype.Lookup(mediaType); known != nil {
		return known.Extension()
	}

	return ""
}

// FilenameFromContentDisposition returns the filename parameter of a
// Content-Disposition value, preferring the RFC 5987 filename* form.
func FilenameFromContentDisposition(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return ""
	}
	// mime.ParseMediaType decodes filename* into "filename".
	return params["filename"]
}

// SuggestFilename picks a filename from, in order, the anchor download
// attribute value, the Content-Disposition filename and the URL path.
// The result is sanitized.
func SuggestFilename(anchorName, contentDisposition, uri string) string {
	if name := strings.TrimSpace(anchorName); name != "" {
		return SanitizeFilename(name)
	}
	if name := FilenameFromContentDisposition(contentDisposition); name != "" {
		return SanitizeFilename(name)
	}
	return SanitizeFilename(ExtractFilenameFromURI(uri))
}

// ExtractFilenameFromURI extracts the filename from a URI path component.
// Handles both URIs and plain paths. Returns DefaultFilename for edge cases.
func ExtractFilenameFromURI(uri string) string {
	if uri == "" {
		return DefaultFilename
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return extractFromPath(uri)
	}

	return extractFromPath(parsed.Path)
}

// ExtractFilenameFromDestination extracts the filename from a file:// URI or path.
func ExtractFilenameFromDestination(dest string) string {
	path := strings.TrimPrefix(dest, "file://")
	base := filepath.Base(path)

	if base == "." || base == "" {
		return DefaultFilename
	}
	return base
}

func extractFromPath(path string) string {
	base := filepath.Base(path)
	if base == "." || base == "" || base == "/" {
		return DefaultFilename
	}
	return base
}

// MakeUniqueFilename generates a unique filename by appending _(N) if needed.
// The exists function should return true if the given path already exists.
func MakeUniqueFilename(dir, filename string, exists func(path string) bool) string {
	destPath := filepath.Join(dir, filename)
	if !exists(destPath) {
		return filename
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	for i := 1; i < 1000; i++ {
		candidate := fmt.Sprintf("%s_(%d)%s", base, i, ext)
		candidatePath := filepath.Join(dir, candidate)
		if !exists(candidatePath) {
			return candidate
		}
	}

	return fmt.Sprintf("%s_%d%s", base, time.Now().UnixNano(), ext)
}
