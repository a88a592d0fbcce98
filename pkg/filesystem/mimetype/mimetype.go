// Package mimetype infers MIME types for stored files from their content and
// their file extension.
package mimetype

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Detector infers the MIME type of a file.
type Detector interface {
	// DetectMimeType infers the type from contents, falling back to the path
	// extension when the content is inconclusive. Returns "" when unknown.
	DetectMimeType(path string, contents []byte) string

	// DetectMimeTypeFromPath infers the type from the path extension only.
	DetectMimeTypeFromPath(path string) string
}

// inconclusive lists sniffed types that say nothing beyond "some bytes".
var inconclusive = map[string]bool{
	"text/plain":               true,
	"application/octet-stream": true,
	"application/x-empty":      true,
	"inode/x-empty":            true,
	"text/x-asm":               true,
}

// extensions covers common types that differ between platforms' mime tables
// or that content sniffing cannot tell apart from plain text.
var extensions = map[string]string{
	".css":      "text/css",
	".csv":      "text/csv",
	".htm":      "text/html",
	".html":     "text/html",
	".ics":      "text/calendar",
	".js":       "text/javascript",
	".mjs":      "text/javascript",
	".json":     "application/json",
	".jsonld":   "application/ld+json",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".svg":      "image/svg+xml",
	".txt":      "text/plain",
	".xml":      "application/xml",
	".yaml":     "application/yaml",
	".yml":      "application/yaml",
	".toml":     "application/toml",
	".wasm":     "application/wasm",
	".webp":     "image/webp",
	".avif":     "image/avif",
	".woff":     "font/woff",
	".woff2":    "font/woff2",
	".mp4":      "video/mp4",
	".webm":     "video/webm",
	".mp3":      "audio/mpeg",
	".pdf":      "application/pdf",
	".zip":      "application/zip",
	".gz":       "application/gzip",
	".tar":      "application/x-tar",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".gif":      "image/gif",
}

// ContentDetector sniffs contents with github.com/gabriel-vasile/mimetype and
// falls back to an extension map.
type ContentDetector struct {
	extensions map[string]string
}

// NewDetector returns the default Detector. Entries in overrides take
// precedence over the built-in extension map; keys include the leading dot.
func NewDetector(overrides map[string]string) *ContentDetector {
	merged := make(map[string]string, len(extensions)+len(overrides))
	for ext, typ := range extensions {
		merged[ext] = typ
	}
	for ext, typ := range overrides {
		merged[strings.ToLower(ext)] = typ
	}
	return &ContentDetector{extensions: merged}
}

func (d *ContentDetector) DetectMimeType(p string, contents []byte) string {
	if len(contents) > 0 {
		sniffed := stripParameters(mimetype.Detect(contents).String())
		if sniffed != "" && !inconclusive[sniffed] {
			return sniffed
		}
		if byPath := d.DetectMimeTypeFromPath(p); byPath != "" {
			return byPath
		}
		return sniffed
	}
	return d.DetectMimeTypeFromPath(p)
}

func (d *ContentDetector) DetectMimeTypeFromPath(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return ""
	}
	if typ, ok := d.extensions[ext]; ok {
		return typ
	}
	return stripParameters(mime.TypeByExtension(ext))
}

func stripParameters(typ string) string {
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	return strings.TrimSpace(typ)
}
