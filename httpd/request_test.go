package httpd

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

func parse(t *testing.T, raw string) *Request {
	t.Helper()
	req, err := readRequest(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatalf("readRequest failed: %v", err)
	}
	return req
}

func TestReadRequest(t *testing.T) {
	req := parse(t, "GET /test HTTP/1.1\r\nAccept: text/css\r\nX-Token: abc\r\n\r\n")

	if req.Method != "GET" {
		t.Errorf("Method = %q", req.Method)
	}
	if req.URI != "/test" {
		t.Errorf("URI = %q", req.URI)
	}
	if req.Protocol != "HTTP/1.1" {
		t.Errorf("Protocol = %q", req.Protocol)
	}

	// Header names fold to lowercase; defaults survive unless overridden.
	if v, _ := req.HeaderValue("X-Token"); v != "abc" {
		t.Errorf("x-token = %q", v)
	}
	if req.Header["accept"] != "text/css" {
		t.Errorf("accept = %q", req.Header["accept"])
	}
	if req.Header["connection"] != "close" {
		t.Errorf("connection default = %q", req.Header["connection"])
	}
	if req.Header["accept-encoding"] != "identity" {
		t.Errorf("accept-encoding default = %q", req.Header["accept-encoding"])
	}
}

func TestReadRequestLowercasesMethodInput(t *testing.T) {
	req := parse(t, "get / HTTP/1.0\r\n\r\n")
	if req.Method != "GET" {
		t.Errorf("Method = %q, want GET", req.Method)
	}
}

// A connection that opens and closes without sending anything is not a
// malformed request; the parser reports EOF and nothing else.
func TestReadRequestEmptyConnection(t *testing.T) {
	_, err := readRequest(bufio.NewReader(bytes.NewReader(nil)))
	if err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestReadRequestSkipsGarbageBeforeRequestLine(t *testing.T) {
	req := parse(t, "\r\nhello there\r\nGET /x HTTP/1.0\r\n\r\n")
	if req.URI != "/x" {
		t.Errorf("URI = %q", req.URI)
	}
}

func TestReadRequestGarbageOnly(t *testing.T) {
	_, err := readRequest(bufio.NewReader(strings.NewReader("not a request\r\n")))
	if err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestReadRequestContentLengthBody(t *testing.T) {
	req := parse(t, "POST /devices HTTP/1.1\r\nContent-Length: 11\r\n\r\nhello world")
	if string(req.Body) != "hello world" {
		t.Errorf("Body = %q", req.Body)
	}
}

func TestReadRequestBodyWithoutContentLength(t *testing.T) {
	req := parse(t, "POST / HTTP/1.1\r\n\r\nleftover")
	if string(req.Body) != "leftover" {
		t.Errorf("Body = %q", req.Body)
	}
}

func TestReadRequestTruncatedBody(t *testing.T) {
	// Announced length larger than what arrives: keep what was read.
	req := parse(t, "POST / HTTP/1.1\r\nContent-Length: 100\r\n\r\nshort")
	if string(req.Body) != "short" {
		t.Errorf("Body = %q", req.Body)
	}
}

func TestReadRequestMalformedContentLength(t *testing.T) {
	// An unparseable or non-positive length behaves like no header at
	// all: whatever is buffered becomes the body.
	for _, cl := range []string{"banana", "-5", "0"} {
		raw := "POST / HTTP/1.1\r\nContent-Length: " + cl + "\r\n\r\nleftover"
		if req := parse(t, raw); string(req.Body) != "leftover" {
			t.Errorf("Content-Length %q: Body = %q", cl, req.Body)
		}
	}
}

func TestAcceptsGzip(t *testing.T) {
	req := parse(t, "GET / HTTP/1.1\r\nAccept-Encoding: gzip, deflate\r\n\r\n")
	if !req.AcceptsGzip() {
		t.Error("gzip should be accepted")
	}

	req = parse(t, "GET / HTTP/1.1\r\n\r\n")
	if req.AcceptsGzip() {
		t.Error("default accept-encoding should not accept gzip")
	}
}

func TestDecodeURI(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/plain", "/plain"},
		{"/with%20space", "/with space"},
		{"/%2Fescaped", "//escaped"},
		{"/mixed%41%61", "/mixedAa"},
		// Escapes that do not decode pass through verbatim.
		{"/bad%zz", "/bad%zz"},
		{"/trailing%2", "/trailing%2"},
		{"/trailing%", "/trailing%"},
	}

	for _, c := range cases {
		if got := decodeURI(c.in); got != c.want {
			t.Errorf("decodeURI(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func BenchmarkReadRequest(b *testing.B) {
	raw := []byte("GET /test HTTP/1.1\r\nAccept: text/css\r\nConnection: close\r\nContent-Length: 0\r\n\r\n")

	reader := bytes.NewReader(raw)
	br := bufio.NewReader(reader)

	for b.Loop() {
		reader.Reset(raw)
		br.Reset(reader)

		if _, err := readRequest(br); err != nil {
			b.Error(err)
		}
	}
}
