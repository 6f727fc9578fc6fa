package httpd

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/hearthlab/hearth/filesystem"
)

var (
	tracer = otel.Tracer("github.com/hearthlab/hearth/httpd")
	meter  = otel.Meter("github.com/hearthlab/hearth/httpd")

	requestCount metric.Int64Counter
)

func init() {
	requestCount, _ = meter.Int64Counter("hearth.httpd.requests",
		metric.WithDescription("Requests served, by method and status code"),
		metric.WithUnit("{request}"))
}

// Server is one listening instance: a socket, its route table and its
// plugin chain. Multiple instances coexist, one per port. Routes and
// plugins may still be registered after Start, while the accept loop
// is already serving.
type Server struct {
	listener  net.Listener
	router    router
	pluginsMu sync.RWMutex
	plugins   []Plugin
	closing   atomic.Bool

	fs                 filesystem.Filesystem
	certFile, keyFile  string
	protocol           string // forced response protocol; empty echoes the request's
	defaultContentType string
	logLevel           int
	log                LogFunc
}

// Option configures a Server at Start time.
type Option func(*Server)

// WithResponder registers a default handler for the given patterns as
// part of startup.
func WithResponder(h Handler, methodPattern, uriPattern string) Option {
	return func(s *Server) { s.router.add(methodPattern, uriPattern, h) }
}

// WithTLS wraps the listening socket in TLS. Without it the server
// listens on plain TCP.
func WithTLS(certFile, keyFile string) Option {
	return func(s *Server) { s.certFile, s.keyFile = certFile, keyFile }
}

// WithProtocol forces the protocol written in every status line,
// e.g. "HTTP/1.0", instead of echoing the request's.
func WithProtocol(protocol string) Option {
	return func(s *Server) { s.protocol = protocol }
}

// WithDefaultContentType sets the fallback Content-Type used when
// neither a handler, a plugin nor the MIME table produced one.
func WithDefaultContentType(mimeType string) Option {
	return func(s *Server) { s.defaultContentType = mimeType }
}

// WithLogLevel sets verbosity: 0 silent, 1 lifecycle, 2 per-transaction,
// 3 full wire dump.
func WithLogLevel(level int) Option {
	return func(s *Server) { s.logLevel = level }
}

// WithLogSink replaces the slog-backed default logging sink.
func WithLogSink(f LogFunc) Option {
	return func(s *Server) { s.log = f }
}

// WithFilesystem replaces the filesystem used for file delivery.
func WithFilesystem(fs filesystem.Filesystem) Option {
	return func(s *Server) { s.fs = fs }
}

var (
	serversMu sync.Mutex
	servers   = make(map[*Server]struct{})
)

func newServer(opts ...Option) *Server {
	s := &Server{
		fs:                 filesystem.Local,
		defaultContentType: "text/html",
		logLevel:           LogLifecycle,
		log: func(message, tag string) {
			slog.Info(message, "tag", tag)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a listening socket on port and begins serving. Port 0
// picks a free port; Addr reports the bound address.
func Start(port int, opts ...Option) (*Server, error) {
	s := newServer(opts...)

	addr := ":" + strconv.Itoa(port)
	var err error
	if s.certFile != "" {
		cert, loadErr := tls.LoadX509KeyPair(s.certFile, s.keyFile)
		if loadErr != nil {
			return nil, fmt.Errorf("httpd: loading key pair: %w", loadErr)
		}
		s.listener, err = tls.Listen("tcp", addr, &tls.Config{Certificates: []tls.Certificate{cert}})
	} else {
		s.listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("httpd: listen on %s: %w", addr, err)
	}

	serversMu.Lock()
	servers[s] = struct{}{}
	serversMu.Unlock()

	s.logf(LogLifecycle, "info", "listening on %s", s.Addr())
	go s.serve()
	return s, nil
}

// Addr returns the listener's bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// DefineRoute maps a (method pattern, URI pattern) pair to a handler.
// Patterns are globs: '*' spans any run of bytes, '?' one byte.
func (s *Server) DefineRoute(h Handler, methodPattern, uriPattern string) {
	s.router.add(methodPattern, uriPattern, h)
}

// DefinePlugin appends a plugin to this server's chain, run after
// every handler.
func (s *Server) DefinePlugin(p Plugin) {
	s.pluginsMu.Lock()
	s.plugins = append(s.plugins, p)
	s.pluginsMu.Unlock()
}

// pluginChain snapshots the instance chain for one request.
func (s *Server) pluginChain() []Plugin {
	s.pluginsMu.RLock()
	defer s.pluginsMu.RUnlock()
	return s.plugins
}

// sharedPlugins run on every server instance, before instance plugins.
var (
	sharedPluginsMu sync.RWMutex
	sharedPlugins   []Plugin
)

// DefinePlugin registers a plugin shared by all server instances.
func DefinePlugin(p Plugin) {
	sharedPluginsMu.Lock()
	sharedPlugins = append(sharedPlugins, p)
	sharedPluginsMu.Unlock()
}

func sharedPluginChain() []Plugin {
	sharedPluginsMu.RLock()
	defer sharedPluginsMu.RUnlock()
	return sharedPlugins
}

// Stop closes the listening socket. In-flight connections finish on
// their own goroutines.
func (s *Server) Stop() error {
	s.closing.Store(true)

	serversMu.Lock()
	delete(servers, s)
	serversMu.Unlock()

	s.logf(LogLifecycle, "info", "stopping listener on %s", s.Addr())
	return s.listener.Close()
}

// StopAll stops every running server instance.
func StopAll() error {
	serversMu.Lock()
	running := make([]*Server, 0, len(servers))
	for s := range servers {
		running = append(running, s)
	}
	serversMu.Unlock()

	var errs []error
	for _, s := range running {
		if err := s.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closing.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logf(LogLifecycle, "info", "accept failed: %v", err)
			continue
		}

		go s.serveConn(conn)
	}
}

// serveConn runs one connection through parse, route, pipeline and
// serialize, then closes it. One response per connection.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	connID := uuid.NewString()

	var rec *recordingReader
	var r io.Reader = conn
	if s.logLevel >= LogWire {
		rec = &recordingReader{r: conn}
		r = rec
	}

	req, err := readRequest(bufio.NewReaderSize(r, DefaultReadBufferSize))
	if err != nil {
		// Client connected and went away without a request line. Not a
		// malformed request; close without responding.
		s.logf(LogWire, "info", "conn %s closed before a request line", connID)
		return
	}
	if rec != nil {
		s.log(rec.String(), "input")
	}

	ctx, span := tracer.Start(context.Background(), "httpd.request",
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.target", req.URI),
		))
	defer span.End()

	h, tail := s.router.match(req.Method, req.URI)
	req.URITail = tail

	res := s.respond(req, h)

	protocol := s.protocol
	if protocol == "" {
		protocol = req.Protocol
	}
	if protocol == "" {
		protocol = "HTTP/1.1"
	}
	wire := res.serialize(protocol)

	code := statusCode(res.Status)
	span.SetAttributes(attribute.Int("http.status_code", code))
	requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", req.Method),
		attribute.Int("status", code),
	))

	s.logf(LogTransaction, "info", "conn %s %s %s -> %s (%d bytes)",
		connID, req.Method, req.URI, res.Status, len(wire))
	if s.logLevel >= LogWire {
		s.log(string(wire), "output")
	}

	if _, err := conn.Write(wire); err != nil {
		s.logf(LogLifecycle, "info", "conn %s write failed: %v", connID, err)
	}
}

func (s *Server) logf(level int, tag, format string, args ...any) {
	if s.logLevel < level {
		return
	}
	s.log(fmt.Sprintf(format, args...), tag)
}

// recordingReader keeps a copy of everything read for the wire dump.
type recordingReader struct {
	r   io.Reader
	buf bytes.Buffer
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if n > 0 {
		rr.buf.Write(p[:n])
	}
	return n, err
}

func (rr *recordingReader) String() string {
	return rr.buf.String()
}
