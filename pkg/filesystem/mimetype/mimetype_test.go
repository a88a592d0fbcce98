package mimetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestDetectMimeType(t *testing.T) {
	d := NewDetector(nil)

	t.Run("ContentWins", func(t *testing.T) {
		assert.Equal(t, "image/png", d.DetectMimeType("picture.txt", pngHeader))
	})

	t.Run("PlainTextDefersToExtension", func(t *testing.T) {
		assert.Equal(t, "text/css", d.DetectMimeType("site.css", []byte("body { color: red; }")))
		assert.Equal(t, "text/markdown", d.DetectMimeType("README.md", []byte("# title\n")))
	})

	t.Run("PlainTextWithoutExtension", func(t *testing.T) {
		assert.Equal(t, "text/plain", d.DetectMimeType("notes", []byte("hello world")))
	})

	t.Run("NoContentUsesPath", func(t *testing.T) {
		assert.Equal(t, "application/json", d.DetectMimeType("data.json", nil))
		assert.Equal(t, "", d.DetectMimeType("no-extension", nil))
	})

	t.Run("ParametersStripped", func(t *testing.T) {
		got := d.DetectMimeType("page", []byte("<!DOCTYPE html><html><body>hi</body></html>"))
		assert.Equal(t, "text/html", got)
	})
}

func TestDetectMimeTypeFromPath(t *testing.T) {
	d := NewDetector(map[string]string{".LOG": "text/x-log"})

	assert.Equal(t, "image/jpeg", d.DetectMimeTypeFromPath("a/b/photo.JPG"))
	assert.Equal(t, "text/x-log", d.DetectMimeTypeFromPath("server.log"))
	assert.Equal(t, "", d.DetectMimeTypeFromPath("dir/"))
}
