package httpd

import (
	"path/filepath"
	"strings"
	"sync"
)

// mimeTable maps file extensions (without the dot) to MIME types.
type mimeTable struct {
	mu    sync.RWMutex
	byExt map[string]string
}

var mimeTypes = &mimeTable{byExt: map[string]string{
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"xml":  "application/xml",
	"png":  "image/png",
	"gif":  "image/gif",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"pdf":  "application/pdf",
	"gz":   "application/gzip",
	"wasm": "application/wasm",
	"woff": "font/woff",
	"mp4":  "video/mp4",
}}

// DefineMimeType registers or overrides the MIME type for an extension.
// The extension may be given with or without a leading dot.
func DefineMimeType(ext, mimeType string) {
	mimeTypes.mu.Lock()
	defer mimeTypes.mu.Unlock()
	mimeTypes.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))] = mimeType
}

// MimeTypeByPath resolves a MIME type from a file path's extension.
// Unknown extensions yield application/octet-stream.
func MimeTypeByPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	mimeTypes.mu.RLock()
	defer mimeTypes.mu.RUnlock()
	if mt, found := mimeTypes.byExt[ext]; found {
		return mt
	}
	return "application/octet-stream"
}
