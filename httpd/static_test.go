package httpd

import (
	"path/filepath"
	"testing"
)

func TestFileResponder(t *testing.T) {
	h := FileResponder("/www")

	cases := []struct {
		tail, want string
	}{
		{"style.css", filepath.Join("/www", "style.css")},
		{"/style.css", filepath.Join("/www", "style.css")},
		{"img/logo.png", filepath.Join("/www", "img", "logo.png")},
		{"style.css?v=2", filepath.Join("/www", "style.css")},
		// Attempts to climb out of the root stay confined.
		{"../../etc/passwd", filepath.Join("/www", "etc", "passwd")},
		{"a/../../secret", filepath.Join("/www", "secret")},
	}

	for _, c := range cases {
		fields, err := h(&Request{URITail: c.tail})
		if err != nil {
			t.Fatalf("tail %q: %v", c.tail, err)
		}
		if fields.File != c.want {
			t.Errorf("tail %q resolved to %q, want %q", c.tail, fields.File, c.want)
		}
	}
}
