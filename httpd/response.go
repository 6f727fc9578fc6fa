package httpd

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
)

// Response is the accumulating response object one request owns for its
// whole trip through the pipeline. Handlers contribute Fields that are
// merged in; plugins mutate it directly. Once ErrorStatus is set the
// normal Status/Body pair stops being authoritative: finalization reads
// the error channel instead.
type Response struct {
	Status string
	Body   []byte
	Header map[string]string

	// Directives resolved during finalization.
	ContentType string
	File        string
	NoCache     bool
	ErrorStatus string
	ErrorBody   string

	// gzipped marks a body that already carries gzip encoding, so the
	// pipeline's own compression step leaves it alone.
	gzipped bool
}

func newResponse() *Response {
	return &Response{
		Status: "200 OK",
		Header: map[string]string{"Connection": "close"},
	}
}

// Fields is the partial response a handler returns. Zero-valued fields
// are left untouched on merge; Header entries merge key by key, so
// defaults a handler does not mention survive.
type Fields struct {
	Status      string
	Body        []byte
	Header      map[string]string
	ContentType string
	File        string
	NoCache     bool
	ErrorStatus string
	ErrorBody   string
}

func (res *Response) merge(f Fields) {
	if f.Status != "" {
		res.Status = f.Status
	}
	if f.Body != nil {
		res.Body = f.Body
	}
	for name, value := range f.Header {
		res.Header[name] = value
	}
	if f.ContentType != "" {
		res.ContentType = f.ContentType
	}
	if f.File != "" {
		res.File = f.File
	}
	if f.NoCache {
		res.NoCache = true
	}
	if f.ErrorStatus != "" {
		res.ErrorStatus = f.ErrorStatus
	}
	if f.ErrorBody != "" {
		res.ErrorBody = f.ErrorBody
	}
}

// fail routes the response into the error channel.
func (res *Response) fail(status, body string) {
	res.ErrorStatus = status
	res.ErrorBody = body
}

// serialize renders the finalized response as wire bytes: status line,
// headers with CRLF endings, a computed Content-Length, a blank line,
// then the body verbatim so the length stays honest for binary payloads.
// protocol is the request's declared version unless the server forces one.
func (res *Response) serialize(protocol string) []byte {
	var b bytes.Buffer
	b.Grow(len(res.Body) + 256)

	b.WriteString(protocol)
	b.WriteByte(' ')
	b.WriteString(res.Status)
	b.WriteString("\r\n")

	// Sorted for a stable wire image; empty values are dropped and any
	// caller-supplied Content-Length yields to the computed one.
	names := make([]string, 0, len(res.Header))
	for name := range res.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if res.Header[name] == "" || strings.EqualFold(name, "Content-Length") {
			continue
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(res.Header[name])
		b.WriteString("\r\n")
	}

	b.WriteString("Content-Length: ")
	b.WriteString(strconv.Itoa(len(res.Body)))
	b.WriteString("\r\n\r\n")
	b.Write(res.Body)

	return b.Bytes()
}
