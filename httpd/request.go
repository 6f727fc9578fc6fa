package httpd

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Request is the parsed form of one incoming HTTP request. It is built
// once per connection and not mutated after routing; URITail is filled
// in when a route is selected.
type Request struct {
	Method   string
	URI      string
	URITail  string
	Protocol string
	Header   map[string]string // keys folded to lowercase
	Body     []byte
}

// HeaderValue returns the named header, folding the name to lowercase.
func (req *Request) HeaderValue(name string) (string, bool) {
	v, found := req.Header[strings.ToLower(name)]
	return v, found
}

// AcceptsGzip reports whether the client listed gzip in accept-encoding.
func (req *Request) AcceptsGzip() bool {
	return strings.Contains(req.Header["accept-encoding"], "gzip")
}

// readRequest drives the Connecting -> Header -> Body states over br.
// A connection that closes before producing a request line yields io.EOF
// and no request; the caller closes the socket without responding.
func readRequest(br *bufio.Reader) (*Request, error) {
	req := &Request{
		Header: map[string]string{
			// Defaults so absent headers still read sanely.
			"connection":      "close",
			"accept":          "*/*",
			"accept-encoding": "identity",
		},
	}

	// Connecting: skip anything that is not a request line.
	for {
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			return nil, io.EOF
		}
		line = strings.TrimSpace(line)

		parts := strings.Split(line, " ")
		if len(parts) == 3 && strings.HasPrefix(parts[2], "HTTP/") {
			req.Method = strings.ToUpper(parts[0])
			req.URI = decodeURI(parts[1])
			req.Protocol = parts[2]
			break
		}
		if err != nil {
			return nil, io.EOF
		}
	}

	// Header: name:value lines until the blank separator.
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, io.EOF
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if i := strings.Index(line, ":"); i >= 0 {
			name := strings.ToLower(strings.TrimSpace(line[:i]))
			req.Header[name] = strings.TrimSpace(line[i+1:])
		}
	}

	// Body: a well-formed positive content-length is read in full; an
	// absent, malformed or non-positive one takes only the bytes
	// already buffered.
	length := 0
	if cl, found := req.Header["content-length"]; found {
		if n, err := strconv.Atoi(cl); err == nil && n > 0 {
			length = n
		}
	}
	if length > 0 {
		if length > MaxRequestBody {
			length = MaxRequestBody
		}
		body := make([]byte, length)
		read, _ := io.ReadFull(br, body)
		req.Body = body[:read]
	} else if n := br.Buffered(); n > 0 {
		body := make([]byte, n)
		read, _ := br.Read(body)
		req.Body = body[:read]
	}

	return req, nil
}

// decodeURI resolves %XY escapes. Escapes that do not decode are kept
// verbatim rather than rejected; the router sees the raw bytes.
func decodeURI(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, lo := hexToByte(s[i+1]), hexToByte(s[i+2])
			if hi != 255 && lo != 255 {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func hexToByte(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 255
}
