package services

import (
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// Potree viewer output is served straight from the bucket, so every file type
// the viewer ships needs a correct Content-Type.
var contentTypes = map[string]string{
	".json": "application/json",
	".html": "text/html",
	".js":   "application/javascript",
	".css":  "text/css",
	".wasm": "application/wasm",
	".bin":  "application/octet-stream",
	".txt":  "text/plain",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".map":  "application/json",
	".xml":  "application/xml",
}

var contentEncodings = map[string]string{
	".gz": "gzip",
	".br": "br",
}

// DetectContentType maps a file name to the Content-Type and Content-Encoding
// headers for upload. A compression suffix ("scene.js.gz") sets the encoding
// and the type is derived from the inner extension. Unknown extensions degrade
// to application/octet-stream; there is no failure path.
func DetectContentType(name string) (contentType, contentEncoding string) {
	ext := strings.ToLower(filepath.Ext(name))

	if encoding, ok := contentEncodings[ext]; ok {
		contentEncoding = encoding
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(name, ext)))
	}

	if ct, ok := contentTypes[ext]; ok {
		return ct, contentEncoding
	}
	return defaultContentType, contentEncoding
}
