// Package httpd is the embedded HTTP engine behind the hearth debug
// console and web dashboard. It speaks just enough HTTP/1.x for a
// controller UI: one request per connection, a glob route table ordered
// by specificity, and a response pipeline that handlers and plugins
// fill in cooperatively.
package httpd

const (
	// MaxRequestBody caps how many body bytes a single request may carry.
	MaxRequestBody = 2 * 1024 * 1024 // 2MB

	// DefaultReadBufferSize is the per-connection bufio.Reader size.
	DefaultReadBufferSize = 4096

	// GzipThreshold is the minimum body size, in bytes, worth compressing.
	GzipThreshold = 100
)

// Log levels accepted by WithLogLevel.
const (
	LogSilent      = 0
	LogLifecycle   = 1
	LogTransaction = 2
	LogWire        = 3
)

// A Handler produces the response fields for one request. Returning an
// error (or panicking) routes the request into the error channel as a 500.
type Handler func(req *Request) (Fields, error)

// A Plugin runs after every handler, in registration order, and may
// mutate the response in place. A returned error forces a 500 regardless
// of whatever state the response was in.
type Plugin func(req *Request, res *Response) error

// LogFunc is the engine's logging sink. Tags are "info" for lifecycle
// events, "input" for received wire data and "output" for sent wire data.
type LogFunc func(message, tag string)

// NotFoundResponder is the fallback handler used when no route matches.
var NotFoundResponder Handler = func(req *Request) (Fields, error) {
	return Fields{Status: "404"}, nil
}
