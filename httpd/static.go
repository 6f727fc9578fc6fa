package httpd

import (
	"path"
	"path/filepath"
	"strings"
)

// FileResponder returns a handler serving files under root, resolving
// the matched route's URI tail as a relative path. Pair it with a
// wildcard route such as ("GET", "/static/*"). The pipeline's file
// delivery stage takes care of MIME resolution and .gz siblings.
func FileResponder(root string) Handler {
	return func(req *Request) (Fields, error) {
		rel := req.URITail
		if i := strings.IndexByte(rel, '?'); i >= 0 {
			rel = rel[:i]
		}
		// Clean against "/" so ".." cannot climb out of root.
		rel = path.Clean("/" + strings.TrimPrefix(rel, "/"))

		return Fields{File: filepath.Join(root, filepath.FromSlash(rel))}, nil
	}
}
